package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	authsvc "github.com/ivankudzin/botlist/internal/services/auth"
)

func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API access token for a Telegram user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user must be a positive Telegram id")
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			token, expiresAt, err := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).GenerateAccessToken(userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintf(out, "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "Telegram id the token is issued for")
	return cmd
}
