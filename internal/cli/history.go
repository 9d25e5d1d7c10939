package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aiknvm/internal/controller"
)

func historyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history [conversation-id]",
		Short: "List past conversations, or show one with its messages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				conv, err := app.History.Get(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\n", conv.ID, conv.Title)
				for _, m := range conv.Messages {
					fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
				}
				return nil
			}

			hl := controller.NewHistoryList(app.History, app.Store)
			ch, notify := notifyChan()
			hl.SetOnChange(notify)
			hl.Activate(ctx)
			defer hl.Deactivate()

			if err := await(ctx, ch, func() bool { return !hl.State().Loading }); err != nil {
				return err
			}

			state := hl.State()
			if state.Err != nil {
				return state.Err
			}
			if state.Stale {
				fmt.Fprintln(out, "(offline, showing cached conversations)")
			}
			for _, c := range state.Conversations {
				fmt.Fprintf(out, "%s\t%s\t%s\n", c.ID, c.Title, c.LastMessageAt)
			}
			return nil
		},
	}
}
