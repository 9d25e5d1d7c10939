// Package cli is the terminal front end. It plays the role of the app's
// screens: every command activates a controller, waits for it to settle and
// renders the committed state.
package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"aiknvm/internal/api"
	"aiknvm/internal/config"
	"aiknvm/internal/identity"
	"aiknvm/internal/repository"
	"aiknvm/internal/secrets"
	"aiknvm/internal/storage"
)

// App carries the long-lived service objects. Repositories are constructed
// once here and injected into controllers, never per activation.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    *storage.Store
	Secrets  secrets.Store
	Client   *api.Client
	Auth     *repository.Auth
	Bots     *repository.Bot
	Chat     *repository.Chat
	History  *repository.History
	Identity identity.Provider
}

func New(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "aiknvm",
		Short:         "Chat with aiknvm bots from the terminal",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(
		loginCmd(app),
		whoamiCmd(app),
		signoutCmd(app),
		botsCmd(app),
		historyCmd(app),
		chatCmd(app),
	)
	return root
}

// await blocks until settled reports true, rechecking on every change
// notification. notify must be the channel fed by the controller's on-change
// hook.
func await(ctx context.Context, notify <-chan struct{}, settled func() bool) error {
	for !settled() {
		select {
		case <-notify:
		case <-time.After(250 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func notifyChan() (chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	return ch, func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
