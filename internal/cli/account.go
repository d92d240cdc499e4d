package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/versusleague/internal/api/request"
	"github.com/mcoot/versusleague/internal/api/response"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account registration and login",
	}

	cmd.AddCommand(newAccountAuthCmd("register", "Register a new account", "/api/v1/accounts"))
	cmd.AddCommand(newAccountAuthCmd("login", "Log in with an existing account", "/api/v1/accounts/login"))

	return cmd
}

// newAccountAuthCmd builds register and login, which differ only in the
// endpoint. Both save the returned token.
func newAccountAuthCmd(use, short, path string) *cobra.Command {
	var account, password string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.RegisterRequest{Account: account, Password: password}
			var result response.AuthResponse

			if err := client.Post(cmd.Context(), path, req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account id (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
