package commands

import (
	"context"
	"strconv"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/escrowd/pkg/api"
)

func openAccountCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "open-account <mint>",
		Short: "Open the associated token account of an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context) (*connect.Response[api.AccountResponse], error) {
				return ledgerClient.OpenAccount(ctx, connect.NewRequest(&api.OpenAccountRequest{Owner: owner, Mint: args[0]}))
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner key (default: the token's payer)")
	return cmd
}

func creditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "credit <address> <amount>",
		Short: "Mint tokens into an account (operators only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return err
			}
			return call(cmd, func(ctx context.Context) (*connect.Response[api.AccountResponse], error) {
				return ledgerClient.Credit(ctx, connect.NewRequest(&api.CreditRequest{Address: args[0], Amount: amount}))
			})
		},
	}
}

func getAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-account <address>",
		Short: "Show a token account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context) (*connect.Response[api.AccountResponse], error) {
				return ledgerClient.GetAccount(ctx, connect.NewRequest(&api.GetAccountRequest{Address: args[0]}))
			})
		},
	}
}
