package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"aiknvm/internal/controller"
	"aiknvm/internal/identity"
)

func loginCmd(app *App) *cobra.Command {
	var idToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an external identity token",
		Long: `Sign in by exchanging a Google identity token for a session.
Obtain the token from the browser consent flow and pass it with --token,
or paste it when prompted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := app.Identity
			if provider == nil {
				provider = &terminalProvider{
					token: idToken,
					in:    cmd.InOrStdin(),
					out:   cmd.OutOrStdout(),
				}
			}

			ident := controller.NewIdentity(provider, app.Auth)
			res, err := ident.SignIn(cmd.Context())
			if errors.Is(err, controller.ErrSignInCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "sign-in cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", res.User.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&idToken, "token", "", "identity token from the browser flow")
	return cmd
}

// terminalProvider satisfies the identity contract at a terminal: the token
// arrives via flag or paste, an empty paste counts as cancelling the flow.
type terminalProvider struct {
	token string
	in    io.Reader
	out   io.Writer
}

func (p *terminalProvider) Prompt(ctx context.Context) identity.Outcome {
	token := strings.TrimSpace(p.token)
	if token == "" {
		fmt.Fprint(p.out, "identity token: ")
		scanner := bufio.NewScanner(p.in)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return identity.Outcome{Status: identity.StatusFailed, Reason: err}
			}
			return identity.Outcome{Status: identity.StatusCancelled}
		}
		token = strings.TrimSpace(scanner.Text())
	}
	if token == "" {
		return identity.Outcome{Status: identity.StatusCancelled}
	}
	return identity.Outcome{Status: identity.StatusSuccess, IdentityToken: token}
}
