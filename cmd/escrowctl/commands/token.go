package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/escrowd/internal/auth"
)

// token <subject>: mint a bearer token signed with the server's secret.
func tokenCmd() *cobra.Command {
	var (
		secret string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Mint a bearer token for a payer key or operator name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("ESCROW_JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("secret required (--secret or ESCROW_JWT_SECRET)")
			}
			signed, err := auth.NewJWTManager(secret, ttl).Generate(auth.Principal{
				Subject: args[0],
				Role:    auth.Role(role),
			})
			if err != nil {
				return err
			}
			fmt.Println(signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret (default $ESCROW_JWT_SECRET)")
	cmd.Flags().StringVar(&role, "role", string(auth.RolePayer), "payer or operator")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
