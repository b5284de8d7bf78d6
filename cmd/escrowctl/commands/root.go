package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/escrowd/internal/middleware"
	"github.com/mmynk/escrowd/pkg/api/apiconnect"
)

var (
	serverURL string
	token     string
	timeout   time.Duration

	escrowClient apiconnect.EscrowServiceClient
	ledgerClient apiconnect.LedgerServiceClient
)

func Execute() error {
	root := &cobra.Command{
		Use:          "escrowctl",
		Short:        "Command line client for the escrowd settlement engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("ESCROW_TOKEN")
			}
			var opts []connect.ClientOption
			if token != "" {
				opts = append(opts, connect.WithInterceptors(middleware.BearerToken(token)))
			}
			httpClient := &http.Client{Timeout: timeout}
			escrowClient = apiconnect.NewEscrowServiceClient(httpClient, serverURL, opts...)
			ledgerClient = apiconnect.NewLedgerServiceClient(httpClient, serverURL, opts...)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&serverURL, "server", envOr("ESCROW_SERVER", "http://127.0.0.1:8080"), "escrowd base URL")
	root.PersistentFlags().StringVar(&token, "token", "", "bearer token (default $ESCROW_TOKEN)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(
		tokenCmd(),
		initCmd(), depositCmd(), refundCmd(),
		settleDirectCmd(), settleFiatCmd(), payoutCmd(),
		getCmd(), listCmd(), eventsCmd(), linkCmd(),
		openAccountCmd(), creditCmd(), getAccountCmd(),
	)
	return root.Execute()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// call runs fn with the command's context and prints its response message.
func call[T any](cmd *cobra.Command, fn func(ctx context.Context) (*connect.Response[T], error)) error {
	resp, err := fn(cmd.Context())
	if err != nil {
		return describe(err)
	}
	return printJSON(resp.Msg)
}

// describe adds the server's error kind to a failed call.
func describe(err error) error {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		if kind := cerr.Meta().Get(middleware.ErrorKindHeader); kind != "" {
			return fmt.Errorf("%s (%s): %s", cerr.Code(), kind, cerr.Message())
		}
	}
	return err
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
