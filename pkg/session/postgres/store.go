// Package postgres provides a PostgreSQL-backed session store on pgx.
//
// Expected schema:
//
//	CREATE TABLE sessions (
//	    id             TEXT PRIMARY KEY,
//	    token          TEXT NOT NULL UNIQUE,
//	    user_id        TEXT,
//	    data           JSONB NOT NULL DEFAULT '{}',
//	    ip             TEXT NOT NULL DEFAULT '',
//	    user_agent     TEXT NOT NULL DEFAULT '',
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    last_active_at TIMESTAMPTZ NOT NULL,
//	    expires_at     TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX sessions_user_id_idx ON sessions (user_id);
//	CREATE INDEX sessions_expires_at_idx ON sessions (expires_at);
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/restkit/pkg/session"
)

// Store implements session.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a session store using the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess.Values)
	if err != nil {
		return fmt.Errorf("postgres session: marshal values: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (id, token, user_id, data, ip, user_agent, created_at, last_active_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sess.ID, sess.Token, sess.UserID, data, sess.IP, sess.UserAgent,
		sess.CreatedAt, sess.LastActiveAt, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("postgres session: create: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, token string) (*session.Session, error) {
	var (
		sess session.Session
		data []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, token, user_id, data, ip, user_agent, created_at, last_active_at, expires_at
		FROM sessions WHERE token = $1`, token,
	).Scan(&sess.ID, &sess.Token, &sess.UserID, &data, &sess.IP, &sess.UserAgent,
		&sess.CreatedAt, &sess.LastActiveAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("postgres session: get: %w", err)
	}

	if sess.IsExpired() {
		return nil, session.ErrExpired
	}

	if err := json.Unmarshal(data, &sess.Values); err != nil {
		return nil, fmt.Errorf("postgres session: unmarshal values: %w", err)
	}
	return &sess, nil
}

func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess.Values)
	if err != nil {
		return fmt.Errorf("postgres session: marshal values: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions
		SET token = $2, user_id = $3, data = $4, last_active_at = $5, expires_at = $6
		WHERE id = $1`,
		sess.ID, sess.Token, sess.UserID, data, sess.LastActiveAt, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("postgres session: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("postgres session: delete: %w", err)
	}
	return nil
}

func (s *Store) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("postgres session: delete by user: %w", err)
	}
	return nil
}

func (s *Store) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET last_active_at = $2 WHERE id = $1`, id, lastActiveAt)
	if err != nil {
		return fmt.Errorf("postgres session: touch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// DeleteExpired removes sessions past their expiry. Run it periodically
// (cron, scheduled task) to keep the table compact.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("postgres session: delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}
