package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aiknvm/internal/controller"
)

func whoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess := controller.NewSession(app.Auth, app.Config.APIBaseURL != "")
			ch, notify := notifyChan()
			sess.SetOnChange(notify)
			sess.Activate(ctx)
			defer sess.Deactivate()

			if err := await(ctx, ch, func() bool { return !sess.State().Loading }); err != nil {
				return err
			}

			state := sess.State()
			if state.User == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", state.User.Name, state.User.Email)
			return nil
		},
	}
}

func signoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := controller.NewSession(app.Auth, app.Config.APIBaseURL != "")
			if err := sess.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}
