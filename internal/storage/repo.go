package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"aiknvm/internal/domain"
)

var ErrNotFound = errors.New("not found")

func (s *Store) GetSecret(ctx context.Context, name string) (string, error) {
	q := s.sql.Select("value").From("secrets").Where(sq.Eq{"name": name})
	query, args, err := q.ToSql()
	if err != nil {
		return "", fmt.Errorf("build get secret query: %w", err)
	}
	var value string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get secret: %w", err)
	}
	return value, nil
}

// SetSecret overwrites unconditionally.
func (s *Store) SetSecret(ctx context.Context, name, value string) error {
	q := s.sql.Insert("secrets").
		Columns("name", "value").
		Values(name, value).
		Suffix("ON CONFLICT(name) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP")
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set secret query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set secret: %w", err)
	}
	return nil
}

// DeleteSecret is a no-op when the secret is already absent.
func (s *Store) DeleteSecret(ctx context.Context, name string) error {
	q := s.sql.Delete("secrets").Where(sq.Eq{"name": name})
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete secret query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	return nil
}

// ReplaceBots swaps the cached bot catalog for the given one.
func (s *Store) ReplaceBots(ctx context.Context, bots []domain.Bot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace bots: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	delQuery, delArgs, err := s.sql.Delete("cached_bots").ToSql()
	if err != nil {
		return fmt.Errorf("build clear bots query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, delQuery, delArgs...); err != nil {
		return fmt.Errorf("clear cached bots: %w", err)
	}

	for _, b := range bots {
		q := s.sql.Insert("cached_bots").Columns("id", "name").Values(b.ID, b.Name)
		query, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert bot query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("cache bot %s: %w", b.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace bots: %w", err)
	}
	return nil
}

func (s *Store) CachedBots(ctx context.Context) ([]domain.Bot, error) {
	q := s.sql.Select("id", "name").From("cached_bots").OrderBy("name")
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cached bots query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cached bots: %w", err)
	}
	defer rows.Close()

	var bots []domain.Bot
	for rows.Next() {
		var b domain.Bot
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("scan cached bot: %w", err)
		}
		bots = append(bots, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached bots: %w", err)
	}
	return bots, nil
}

// UpsertConversations refreshes catalog rows; messages are never cached.
func (s *Store) UpsertConversations(ctx context.Context, convs []domain.Conversation) error {
	for _, c := range convs {
		q := s.sql.Insert("cached_conversations").
			Columns("id", "title", "bot_id", "last_message_at").
			Values(c.ID, c.Title, c.BotID, c.LastMessageAt).
			Suffix("ON CONFLICT(id) DO UPDATE SET title=excluded.title, bot_id=excluded.bot_id, last_message_at=excluded.last_message_at, cached_at=CURRENT_TIMESTAMP")
		query, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build upsert conversation query: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("cache conversation %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *Store) CachedConversations(ctx context.Context) ([]domain.Conversation, error) {
	q := s.sql.Select("id", "title", "bot_id", "last_message_at").
		From("cached_conversations").
		OrderBy("last_message_at DESC")
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cached conversations query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cached conversations: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.BotID, &c.LastMessageAt); err != nil {
			return nil, fmt.Errorf("scan cached conversation: %w", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached conversations: %w", err)
	}
	return convs, nil
}
