package secrets

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"aiknvm/internal/crypto"
	"aiknvm/internal/storage"
)

func testDBStore(t *testing.T, keyring *crypto.Keyring) (*DBStore, *storage.Store) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "secrets.db")
	store, err := storage.Open(context.Background(), "sqlite", dsn, true, "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewDBStore(store, keyring, zerolog.Nop()), store
}

func TestDBStoreTokenLifecycle(t *testing.T) {
	s, _ := testDBStore(t, nil)
	ctx := context.Background()

	if _, ok, err := s.Token(ctx); ok || err != nil {
		t.Fatalf("expected absent token, got ok=%v err=%v", ok, err)
	}

	if err := s.SetToken(ctx, "session-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	token, ok, err := s.Token(ctx)
	if err != nil || !ok || token != "session-1" {
		t.Fatalf("expected session-1, got %q ok=%v err=%v", token, ok, err)
	}

	for i := 0; i < 2; i++ {
		if err := s.Clear(ctx); err != nil {
			t.Fatalf("clear #%d: %v", i+1, err)
		}
	}
	if _, ok, _ := s.Token(ctx); ok {
		t.Fatalf("expected token absent after clear")
	}
}

func TestDBStoreSealsTokenAtRest(t *testing.T) {
	keyring, err := crypto.NewKeyring("k1", map[string][]byte{"k1": bytes.Repeat([]byte{0x01}, 32)})
	if err != nil {
		t.Fatalf("keyring: %v", err)
	}
	s, raw := testDBStore(t, keyring)
	ctx := context.Background()

	if err := s.SetToken(ctx, "session-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	stored, err := raw.GetSecret(ctx, "session_token")
	if err != nil {
		t.Fatalf("read raw secret: %v", err)
	}
	if stored == "session-1" {
		t.Fatalf("token must not be stored in plaintext when a keyring is configured")
	}

	token, ok, err := s.Token(ctx)
	if err != nil || !ok || token != "session-1" {
		t.Fatalf("expected unsealed token, got %q ok=%v err=%v", token, ok, err)
	}
}

func TestDBStoreUnreadableTokenTreatedAsAbsent(t *testing.T) {
	keyring, err := crypto.NewKeyring("k1", map[string][]byte{"k1": bytes.Repeat([]byte{0x01}, 32)})
	if err != nil {
		t.Fatalf("keyring: %v", err)
	}
	s, raw := testDBStore(t, keyring)
	ctx := context.Background()

	// A record sealed under a key this keyring never had.
	if err := raw.SetSecret(ctx, "session_token", "lost.AAAA.AAAA"); err != nil {
		t.Fatalf("seed raw secret: %v", err)
	}

	if _, ok, err := s.Token(ctx); ok || err != nil {
		t.Fatalf("unreadable token must read as absent, got ok=%v err=%v", ok, err)
	}
}
