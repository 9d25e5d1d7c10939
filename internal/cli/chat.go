package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"aiknvm/internal/controller"
	"aiknvm/internal/domain"
)

func chatCmd(app *App) *cobra.Command {
	var conversationID string
	var botID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a bot",
		Long: `Start or resume a conversation. Without -c a new conversation is
created on the first message; the server-assigned id is printed so it can be
resumed later.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if botID == "" {
				botID = app.Config.DefaultBot
			}
			var convID *string
			if conversationID != "" {
				convID = &conversationID
			}

			chat := controller.NewChat(app.Chat, convID, botID)
			ch, notify := notifyChan()
			chat.SetOnChange(notify)
			chat.Activate(ctx)
			defer chat.Deactivate()

			if err := await(ctx, ch, func() bool { return !chat.State().Loading }); err != nil {
				return err
			}
			state := chat.State()
			if state.Err != nil {
				return state.Err
			}
			printMessages(out, state.Messages)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprint(out, "> ")
			for scanner.Scan() {
				content := strings.TrimSpace(scanner.Text())
				if content == "" || content == "/quit" {
					break
				}
				id, err := chat.Send(ctx, content)
				if errors.Is(err, controller.ErrSendInFlight) {
					fmt.Fprintln(out, "still sending previous message")
					fmt.Fprint(out, "> ")
					continue
				}
				if err != nil {
					return err
				}
				if convID == nil {
					fmt.Fprintf(out, "(conversation %s)\n", id)
					convID = &id
				}
				printMessages(out, chat.State().Messages)
				fmt.Fprint(out, "> ")
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "conversation id to resume")
	cmd.Flags().StringVarP(&botID, "bot", "b", "", "bot id to chat with")
	return cmd
}

func printMessages(out io.Writer, msgs []domain.Message) {
	for _, m := range msgs {
		fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
	}
}
