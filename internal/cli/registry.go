package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/versusleague/internal/api/request"
	"github.com/mcoot/versusleague/internal/api/response"
	leaguesvc "github.com/mcoot/versusleague/internal/services/league"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Registry governance commands",
	}

	cmd.AddCommand(newRegistryViewCmd())
	cmd.AddCommand(newRegistryPausedCmd())
	cmd.AddCommand(newRegistrySetPausedCmd("pause", "Pause the registry", true))
	cmd.AddCommand(newRegistrySetPausedCmd("unpause", "Unpause the registry", false))
	cmd.AddCommand(newRegistrySetAdminCmd())
	cmd.AddCommand(newRegistrySetMetadataCmd())
	cmd.AddCommand(newRegistryUpgradeCmd())
	cmd.AddCommand(newRegistryModulesCmd())

	return cmd
}

func newRegistryViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show admin, pause flag, metadata URL and module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Registry
			if err := client.Get(cmd.Context(), "/api/v1/registry", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRegistryPausedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paused",
		Short: "Show whether the registry is paused",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Paused
			if err := client.Get(cmd.Context(), "/api/v1/registry/paused", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRegistrySetPausedCmd(use, short string, paused bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result leaguesvc.Receipt
			if err := client.Put(cmd.Context(), "/api/v1/registry/paused", request.SetPausedRequest{Paused: &paused}, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRegistrySetAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-admin <address>",
		Short: "Hand the admin role to an account or contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result leaguesvc.Receipt
			if err := client.Put(cmd.Context(), "/api/v1/registry/admin", request.UpdateAdminRequest{NewAdmin: args[0]}, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRegistrySetMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-metadata <url>",
		Short: "Set the registry metadata URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result leaguesvc.Receipt
			if err := client.Put(cmd.Context(), "/api/v1/registry/metadata-url", request.SetMetadataURLRequest{URL: args[0]}, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRegistryUpgradeCmd() *cobra.Command {
	var migrate, migrateParam string

	cmd := &cobra.Command{
		Use:   "upgrade <module-ref>",
		Short: "Replace the registry's code, optionally running a migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.UpgradeRequest{Module: args[0]}
			if migrate != "" {
				req.Migrate = &request.MigrationRequest{Entrypoint: migrate}
				if migrateParam != "" {
					if !json.Valid([]byte(migrateParam)) {
						return fmt.Errorf("--migrate-param is not valid JSON")
					}
					req.Migrate.Parameter = json.RawMessage(migrateParam)
				}
			} else if migrateParam != "" {
				return fmt.Errorf("--migrate-param requires --migrate")
			}

			var result leaguesvc.Receipt
			if err := client.Post(cmd.Context(), "/api/v1/registry/upgrade", req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&migrate, "migrate", "", "Entrypoint to run on the new code after the swap")
	cmd.Flags().StringVar(&migrateParam, "migrate-param", "", "JSON parameter for the migration entrypoint")

	return cmd
}

func newRegistryModulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List deployed modules, marking the one the registry runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Modules
			if err := client.Get(cmd.Context(), "/api/v1/registry/modules", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
