package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/versusleague/internal/api/request"
	"github.com/mcoot/versusleague/internal/api/response"
	leaguesvc "github.com/mcoot/versusleague/internal/services/league"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player roster commands",
	}

	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerAddedCmd())
	cmd.AddCommand(newPlayerSetStatusCmd())
	cmd.AddCommand(newPlayerRecordCmd())

	return cmd
}

func playerPath(account string) string {
	return "/api/v1/players/" + url.PathEscape(account)
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <account>",
		Short: "Show a player's status and record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := client.Get(cmd.Context(), playerPath(args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerAddedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "added <account>",
		Short: "Check whether an account has a player record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Added
			if err := client.Get(cmd.Context(), playerPath(args[0])+"/added", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <account> <Active|Suspended>",
		Short: "Add a player or change their status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result leaguesvc.Receipt
			if err := client.Put(cmd.Context(), playerPath(args[0])+"/status", request.SetStatusRequest{Status: args[1]}, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <account> <Win|Loss>",
		Short: "Record a battle outcome for a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result leaguesvc.Receipt
			if err := client.Post(cmd.Context(), playerPath(args[0])+"/results", request.RecordResultRequest{Outcome: args[1]}, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
