package cli

import (
	"fmt"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/mailib/mailib-server/internal/auth"
)

func (a *app) newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a development access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(func(i do.Injector) error {
				tokens, err := do.Invoke[*auth.TokenService](i)
				if err != nil {
					return err
				}
				token, err := tokens.IssueAccessToken(args[0])
				if err != nil {
					return err
				}
				if a.settings.Output != outputText {
					return render(cmd.OutOrStdout(), a.settings.Output, map[string]string{
						"user_id":    args[0],
						"token":      token,
						"expires_at": time.Now().Add(tokens.AccessTokenDuration()).UTC().Format(time.RFC3339),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
}
