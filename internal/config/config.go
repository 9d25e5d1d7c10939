package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidBaseURL = errors.New("API_BASE_URL must be an absolute http(s) url")
	ErrInvalidDriver  = errors.New("DB_DRIVER must be 'sqlite' or 'postgres'")
)

// Config is resolved once at process start and treated as immutable for the
// process lifetime. Environment variables win over the config file; the file
// fills whatever the environment leaves empty.
type Config struct {
	// APIBaseURL may be empty: the client then fails open to the signed-out
	// state instead of attempting network calls.
	APIBaseURL  string        `env:"API_BASE_URL" yaml:"api_base_url"`
	DefaultBot  string        `env:"DEFAULT_BOT" yaml:"default_bot"`
	DebugHTTP   bool          `env:"DEBUG_HTTP" yaml:"debug_http"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" yaml:"http_timeout"`

	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`

	Token TokenKeyConfig `yaml:"-"`
}

type StoreConfig struct {
	Driver        string `env:"DB_DRIVER" yaml:"driver"`
	DSN           string `env:"DB_DSN" yaml:"dsn"`
	AutoMigrate   bool   `env:"AUTO_MIGRATE" envDefault:"true" yaml:"auto_migrate"`
	MigrationsDir string `env:"MIGRATIONS_DIR" yaml:"migrations_dir"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

// TokenKeyConfig carries the keyring sealing the token at rest. Empty Keys
// means the store falls back to plaintext (dev mode).
type TokenKeyConfig struct {
	CurrentKeyID string
	Keys         map[string][]byte
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := applyFile(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	cfg.APIBaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL != "" {
		u, err := url.Parse(cfg.APIBaseURL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, ErrInvalidBaseURL
		}
	}

	switch strings.ToLower(cfg.Store.Driver) {
	case "sqlite", "sqlite3", "postgres", "pgx":
	default:
		return nil, ErrInvalidDriver
	}

	tk, err := loadTokenKeys()
	if err != nil {
		return nil, err
	}
	cfg.Token = tk

	return cfg, nil
}

// applyFile merges the optional YAML config file ($AIKNVM_CONFIG or
// ~/.aiknvm/config.yaml) into fields the environment left unset.
func applyFile(cfg *Config) error {
	path := os.Getenv("AIKNVM_CONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".aiknvm", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = file.APIBaseURL
	}
	if cfg.DefaultBot == "" {
		cfg.DefaultBot = file.DefaultBot
	}
	if !cfg.DebugHTTP {
		cfg.DebugHTTP = file.DebugHTTP
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = file.HTTPTimeout
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = file.Store.Driver
	}
	if cfg.Store.DSN == "" {
		cfg.Store.DSN = file.Store.DSN
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = file.Log.Level
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.DSN == "" {
		cfg.Store.DSN = defaultDSN()
	}
	if cfg.Store.MigrationsDir == "" {
		cfg.Store.MigrationsDir = "migrations"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func defaultDSN() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "file:aiknvm.db"
	}
	return "file:" + filepath.Join(home, ".aiknvm", "aiknvm.db")
}

// loadTokenKeys reads the at-rest token keys: TOKEN_KEY_B64 for the single
// current key, TOKEN_KEYS_JSON ({"id": "base64", ...}) plus
// TOKEN_KEY_CURRENT_ID for a rotating keyring.
func loadTokenKeys() (TokenKeyConfig, error) {
	keysB64 := map[string]string{}

	if raw := os.Getenv("TOKEN_KEYS_JSON"); raw != "" {
		var parsed map[string]string
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return TokenKeyConfig{}, fmt.Errorf("parse TOKEN_KEYS_JSON: %w", err)
		}
		for id, val := range parsed {
			if strings.TrimSpace(id) == "" || strings.TrimSpace(val) == "" {
				continue
			}
			keysB64[id] = val
		}
	}

	current := os.Getenv("TOKEN_KEY_CURRENT_ID")
	if singleton := os.Getenv("TOKEN_KEY_B64"); singleton != "" {
		if current == "" {
			current = "default"
		}
		keysB64[current] = singleton
	}

	if len(keysB64) == 0 {
		return TokenKeyConfig{}, nil
	}

	keys := make(map[string][]byte, len(keysB64))
	for id, b64 := range keysB64 {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return TokenKeyConfig{}, fmt.Errorf("decode token key %q: %w", id, err)
		}
		if len(raw) != 32 {
			return TokenKeyConfig{}, fmt.Errorf("token key %q must be 32 bytes after base64 decode", id)
		}
		keys[id] = raw
	}

	if current == "" {
		for id := range keys {
			current = id
			break
		}
	}
	if _, ok := keys[current]; !ok {
		return TokenKeyConfig{}, fmt.Errorf("TOKEN_KEY_CURRENT_ID=%q does not exist in provided keys", current)
	}

	return TokenKeyConfig{CurrentKeyID: current, Keys: keys}, nil
}
