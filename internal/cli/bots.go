package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aiknvm/internal/controller"
)

func botsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bots",
		Short: "List available bots",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			bl := controller.NewBotList(app.Bots, app.Store)
			ch, notify := notifyChan()
			bl.SetOnChange(notify)
			bl.Activate(ctx)
			defer bl.Deactivate()

			if err := await(ctx, ch, func() bool { return !bl.State().Loading }); err != nil {
				return err
			}

			state := bl.State()
			if state.Err != nil {
				return state.Err
			}
			if state.Stale {
				fmt.Fprintln(cmd.OutOrStdout(), "(offline, showing cached bots)")
			}
			for _, b := range state.Bots {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.ID, b.Name)
			}
			return nil
		},
	}
}
