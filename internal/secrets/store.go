// Package secrets holds exactly one secret: the session token. It never
// inspects the token's contents.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"aiknvm/internal/crypto"
	"aiknvm/internal/storage"
)

const tokenName = "session_token"

// Store is the contract the request layer and the auth path depend on. All
// operations are idempotent: Clear on an absent token is a no-op, SetToken
// overwrites unconditionally.
type Store interface {
	Token(ctx context.Context) (token string, ok bool, err error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// DBStore persists the token in the local database, sealed by the keyring
// when one is configured.
type DBStore struct {
	store   *storage.Store
	keyring *crypto.Keyring
	logger  zerolog.Logger
}

func NewDBStore(store *storage.Store, keyring *crypto.Keyring, logger zerolog.Logger) *DBStore {
	return &DBStore{store: store, keyring: keyring, logger: logger}
}

func (s *DBStore) Token(ctx context.Context) (string, bool, error) {
	value, err := s.store.GetSecret(ctx, tokenName)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read token: %w", err)
	}
	if s.keyring == nil {
		return value, true, nil
	}
	token, err := s.keyring.Open(value)
	if err != nil {
		// A token sealed under a lost key cannot be recovered; treat it as
		// signed out rather than wedging every request.
		s.logger.Warn().Err(err).Msg("stored token unreadable, treating as absent")
		return "", false, nil
	}
	return token, true, nil
}

func (s *DBStore) SetToken(ctx context.Context, token string) error {
	value := token
	if s.keyring != nil {
		sealed, err := s.keyring.Seal(token)
		if err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
		value = sealed
	}
	if err := s.store.SetSecret(ctx, tokenName, value); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

func (s *DBStore) Clear(ctx context.Context) error {
	if err := s.store.DeleteSecret(ctx, tokenName); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and ephemeral sessions.
type MemStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Token(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.set, nil
}

func (s *MemStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.set = token, true
	return nil
}

func (s *MemStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.set = "", false
	return nil
}
