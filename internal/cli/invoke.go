package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivankudzin/botlist/internal/infra/rpcclient"
)

// RemoteOptions address a running staffbot HTTP API.
type RemoteOptions struct {
	APIURL  string
	Token   string
	Timeout time.Duration
}

func (o *RemoteOptions) bind(cmd *cobra.Command, required bool) {
	defaultURL := ""
	if required {
		defaultURL = envOr("STAFFBOT_API_URL", "http://localhost:8080")
	}
	cmd.Flags().StringVar(&o.APIURL, "api", defaultURL, "base URL of the staffbot HTTP API")
	cmd.Flags().StringVar(&o.Token, "token", os.Getenv("STAFFBOT_TOKEN"), "access token, see the token command")
	cmd.Flags().DurationVar(&o.Timeout, "timeout", 8*time.Second, "request timeout")
}

func (o *RemoteOptions) client() (*rpcclient.Client, error) {
	return rpcclient.NewClient(o.APIURL, o.Token, o.Timeout)
}

func NewInvokeCommand() *cobra.Command {
	remote := &RemoteOptions{}
	var fieldFlags []string

	cmd := &cobra.Command{
		Use:   "invoke <method>",
		Short: "Run one staff action through the HTTP API",
		Example: `  staffbot invoke BotApprove -f bot_id=42 -f reason="looks fine"
  staffbot invoke BotPremiumAdd -f bot_id=42 -f reason=paid -f duration="2 weeks"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFieldFlags(fieldFlags)
			if err != nil {
				return err
			}
			client, err := remote.client()
			if err != nil {
				return err
			}

			result, err := client.Invoke(commandContext(cmd), args[0], fields)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Reason)
			if !result.Done {
				return fmt.Errorf("%s was not performed (status %d)", args[0], result.StatusCode)
			}
			return nil
		},
	}

	remote.bind(cmd, true)
	cmd.Flags().StringArrayVarP(&fieldFlags, "field", "f", nil, "form field as name=value, repeatable")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
