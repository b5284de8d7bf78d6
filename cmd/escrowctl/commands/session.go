package commands

import (
	"context"
	"fmt"
	"strconv"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/escrowd/pkg/api"
)

// init: open a session for the token's payer, or for --payer as operator.
func initCmd() *cobra.Command {
	var req api.InitSessionRequest
	cmd := &cobra.Command{
		Use:   "init <merchant-id> <mint> <amount>",
		Short: "Open a payment session",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return err
			}
			req.MerchantID, req.TokenType, req.Amount = args[0], args[1], amount
			return call(cmd, func(ctx context.Context) (*connect.Response[api.SessionResponse], error) {
				return escrowClient.InitSession(ctx, connect.NewRequest(&req))
			})
		},
	}
	cmd.Flags().StringVar(&req.ID, "id", "", "session id (default: generated)")
	cmd.Flags().StringVar(&req.Payer, "payer", "", "payer key (operators only)")
	cmd.Flags().StringVar(&req.ReferenceID, "reference", "", "merchant order reference")
	cmd.Flags().StringVar(&req.FiatCurrency, "currency", "", "fiat currency code")
	cmd.Flags().StringVar(&req.MerchantBank, "bank", "", "merchant bank reference")
	return cmd
}

func depositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <session-id>",
		Short: "Fund a session from the payer's token account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context) (*connect.Response[api.SessionResponse], error) {
				return escrowClient.Deposit(ctx, connect.NewRequest(&api.DepositRequest{SessionID: args[0]}))
			})
		},
	}
}

func refundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refund <session-id>",
		Short: "Return a funded session to its payer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context) (*connect.Response[api.SessionResponse], error) {
				return escrowClient.Refund(ctx, connect.NewRequest(&api.RefundRequest{SessionID: args[0]}))
			})
		},
	}
}

func settleDirectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle-direct <session-id> <destination>",
		Short: "Pay a funded session to the merchant's token account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context) (*connect.Response[api.SessionResponse], error) {
				return escrowClient.SettleDirect(ctx, connect.NewRequest(&api.SettleDirectRequest{
					SessionID:   args[0],
					Destination: args[1],
				}))
			})
		},
	}
}

func settleFiatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle-fiat <session-id>",
		Short: "Move a funded session to the fiat bridge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context) (*connect.Response[api.SessionResponse], error) {
				return escrowClient.SettlePendingFiat(ctx, connect.NewRequest(&api.SettlePendingFiatRequest{SessionID: args[0]}))
			})
		},
	}
}

func payoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payout <session-id> <payout-id>",
		Short: "Record the off-chain payout of a pending-fiat session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context) (*connect.Response[api.SessionResponse], error) {
				return escrowClient.RecordPayout(ctx, connect.NewRequest(&api.RecordPayoutRequest{
					SessionID: args[0],
					PayoutID:  args[1],
				}))
			})
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context) (*connect.Response[api.SessionResponse], error) {
				return escrowClient.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: args[0]}))
			})
		},
	}
}

func listCmd() *cobra.Command {
	var req api.ListSessionsRequest
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a payer's sessions, or expired unfunded ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context) (*connect.Response[api.ListSessionsResponse], error) {
				return escrowClient.ListSessions(ctx, connect.NewRequest(&req))
			})
		},
	}
	cmd.Flags().StringVar(&req.Payer, "payer", "", "payer key (operators only)")
	cmd.Flags().BoolVar(&req.ExpiredOnly, "expired", false, "list expired unfunded sessions (operators only)")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "maximum number of sessions")
	return cmd
}

func eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events <session-id>",
		Short: "Print a session's transition log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context) (*connect.Response[api.ListEventsResponse], error) {
				return escrowClient.ListEvents(ctx, connect.NewRequest(&api.ListEventsRequest{SessionID: args[0]}))
			})
		},
	}
}

func linkCmd() *cobra.Command {
	var req api.GetPaymentLinkRequest
	cmd := &cobra.Command{
		Use:   "link <session-id>",
		Short: "Print a wallet payment link that funds a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.SessionID = args[0]
			resp, err := escrowClient.GetPaymentLink(cmd.Context(), connect.NewRequest(&req))
			if err != nil {
				return describe(err)
			}
			fmt.Println(resp.Msg.URL)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Label, "label", "", "label shown by the wallet")
	cmd.Flags().StringVar(&req.Message, "message", "", "message shown by the wallet")
	return cmd
}
