package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points the file layer at a path that does not exist so host
// machines with a real ~/.aiknvm/config.yaml do not leak into tests.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("AIKNVM_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	for _, key := range []string{
		"API_BASE_URL", "DEFAULT_BOT", "DEBUG_HTTP", "HTTP_TIMEOUT",
		"DB_DRIVER", "DB_DSN", "LOG_LEVEL",
		"TOKEN_KEY_B64", "TOKEN_KEYS_JSON", "TOKEN_KEY_CURRENT_ID",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "" {
		t.Fatalf("expected empty base url by default, got %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("expected 10s default timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Fatalf("expected sqlite default driver, got %q", cfg.Store.Driver)
	}
	if len(cfg.Token.Keys) != 0 {
		t.Fatalf("expected no token keys by default")
	}
}

func TestLoadTrimsTrailingSlash(t *testing.T) {
	isolate(t)
	t.Setenv("API_BASE_URL", "https://api.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
}

func TestLoadRejectsBadBaseURL(t *testing.T) {
	isolate(t)
	t.Setenv("API_BASE_URL", "not a url")

	if _, err := Load(); !errors.Is(err, ErrInvalidBaseURL) {
		t.Fatalf("expected ErrInvalidBaseURL, got %v", err)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	isolate(t)
	t.Setenv("DB_DRIVER", "oracle")

	if _, err := Load(); !errors.Is(err, ErrInvalidDriver) {
		t.Fatalf("expected ErrInvalidDriver, got %v", err)
	}
}

func TestLoadFileFillsUnsetFields(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("api_base_url: https://file.example.com\ndefault_bot: b1\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("AIKNVM_CONFIG", path)
	t.Setenv("DEFAULT_BOT", "b2") // env wins over the file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://file.example.com" {
		t.Fatalf("expected base url from file, got %q", cfg.APIBaseURL)
	}
	if cfg.DefaultBot != "b2" {
		t.Fatalf("expected env to win, got %q", cfg.DefaultBot)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected log level from file, got %q", cfg.Log.Level)
	}
}

func TestLoadTokenKeys(t *testing.T) {
	isolate(t)
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x01}, 32))
	t.Setenv("TOKEN_KEY_B64", key)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token.CurrentKeyID != "default" || len(cfg.Token.Keys) != 1 {
		t.Fatalf("expected singleton key under 'default', got %+v", cfg.Token)
	}

	t.Setenv("TOKEN_KEY_B64", "!!not-base64!!")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for undecodable key")
	}
}
