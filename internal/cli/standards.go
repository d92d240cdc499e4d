package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/versusleague/internal/api/request"
	"github.com/mcoot/versusleague/internal/api/response"
	leaguesvc "github.com/mcoot/versusleague/internal/services/league"
)

func newStandardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standards",
		Short: "Standards discovery commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "supports <id>...",
		Short: "Ask which standards the registry supports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Supports
			if err := client.Post(cmd.Context(), "/api/v1/standards/supports", request.SupportsRequest{IDs: args}, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <id> [<index>,<subindex>]...",
		Short: "Replace the implementors of a standard",
		Long: `Replace the implementors of a standard. With no addresses the
standard is reported as supported by an empty list of implementors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.SetImplementorsRequest{Implementors: append([]string{}, args[1:]...)}
			var result leaguesvc.Receipt
			if err := client.Put(cmd.Context(), "/api/v1/standards/"+url.PathEscape(args[0])+"/implementors", req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	})

	return cmd
}
