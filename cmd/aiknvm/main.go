package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"aiknvm/internal/api"
	"aiknvm/internal/cli"
	"aiknvm/internal/config"
	"aiknvm/internal/crypto"
	"aiknvm/internal/repository"
	"aiknvm/internal/secrets"
	"aiknvm/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setupLogger(cfg.Log.Level)
	log.Debug().
		Bool("base_url_set", cfg.APIBaseURL != "").
		Str("store_driver", cfg.Store.Driver).
		Bool("debug_http", cfg.DebugHTTP).
		Msg("starting aiknvm")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ensureStoreDir(cfg.Store.Driver, cfg.Store.DSN)
	store, err := storage.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, cfg.Store.AutoMigrate, cfg.Store.MigrationsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local store")
	}
	defer store.Close()

	var keyring *crypto.Keyring
	if len(cfg.Token.Keys) > 0 {
		keyring, err = crypto.NewKeyring(cfg.Token.CurrentKeyID, cfg.Token.Keys)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build token keyring")
		}
	} else {
		log.Warn().Msg("no token key configured, session token stored unsealed")
	}

	secretStore := secrets.NewDBStore(store, keyring, log.Logger)
	client := api.New(api.Config{
		BaseURL: cfg.APIBaseURL,
		Tokens:  secretStore,
		Timeout: cfg.HTTPTimeout,
		Debug:   cfg.DebugHTTP,
		Logger:  log.Logger,
	})

	app := &cli.App{
		Config:  cfg,
		Logger:  log.Logger,
		Store:   store,
		Secrets: secretStore,
		Client:  client,
		Auth:    repository.NewAuth(client, secretStore),
		Bots:    repository.NewBot(client),
		Chat:    repository.NewChat(client),
		History: repository.NewHistory(client),
	}

	root := cli.New(app)
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func setupLogger(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLogLevel(level))
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func ensureStoreDir(driver, dsn string) {
	if !strings.HasPrefix(driver, "sqlite") && driver != "" {
		return
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return
	}
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o700)
	}
}
