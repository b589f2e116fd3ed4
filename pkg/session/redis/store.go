// Package redis provides a Redis-backed session store. Sessions expire
// automatically via key TTL derived from the session's expiry time.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/restkit/pkg/session"
)

const (
	tokenKeyPrefix = "session:token:"
	idKeyPrefix    = "session:id:"
	userKeyPrefix  = "session:user:"
)

// Store implements session.Store backed by Redis.
//
// Layout: the session body lives under the token key; an id key and a
// per-user set point back at tokens so Delete and DeleteByUserID can
// resolve them without scanning.
type Store struct {
	client goredis.UniversalClient
}

// NewStore creates a session store using the given Redis client.
func NewStore(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Create(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redis session: marshal: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return session.ErrExpired
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, tokenKeyPrefix+sess.Token, data, ttl)
	pipe.Set(ctx, idKeyPrefix+sess.ID, sess.Token, ttl)
	if sess.UserID != nil {
		pipe.SAdd(ctx, userKeyPrefix+*sess.UserID, sess.Token)
		pipe.ExpireAt(ctx, userKeyPrefix+*sess.UserID, sess.ExpiresAt)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session: create: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, token string) (*session.Session, error) {
	data, err := s.client.Get(ctx, tokenKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("redis session: get: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("redis session: unmarshal: %w", err)
	}
	if sess.IsExpired() {
		return nil, session.ErrExpired
	}
	return &sess, nil
}

// Update rewrites the session body, handling token rotation by removing
// the old token key when it no longer matches.
func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	oldToken, err := s.client.Get(ctx, idKeyPrefix+sess.ID).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return session.ErrNotFound
		}
		return fmt.Errorf("redis session: update lookup: %w", err)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redis session: marshal: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return session.ErrExpired
	}

	pipe := s.client.TxPipeline()
	if oldToken != sess.Token {
		pipe.Del(ctx, tokenKeyPrefix+oldToken)
		if sess.UserID != nil {
			pipe.SRem(ctx, userKeyPrefix+*sess.UserID, oldToken)
		}
	}
	pipe.Set(ctx, tokenKeyPrefix+sess.Token, data, ttl)
	pipe.Set(ctx, idKeyPrefix+sess.ID, sess.Token, ttl)
	if sess.UserID != nil {
		pipe.SAdd(ctx, userKeyPrefix+*sess.UserID, sess.Token)
		pipe.ExpireAt(ctx, userKeyPrefix+*sess.UserID, sess.ExpiresAt)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session: update: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	token, err := s.client.Get(ctx, idKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		return fmt.Errorf("redis session: delete lookup: %w", err)
	}

	sess, err := s.Get(ctx, token)
	if err != nil && !errors.Is(err, session.ErrExpired) && !errors.Is(err, session.ErrNotFound) {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, tokenKeyPrefix+token, idKeyPrefix+id)
	if sess != nil && sess.UserID != nil {
		pipe.SRem(ctx, userKeyPrefix+*sess.UserID, token)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session: delete: %w", err)
	}
	return nil
}

func (s *Store) DeleteByUserID(ctx context.Context, userID string) error {
	tokens, err := s.client.SMembers(ctx, userKeyPrefix+userID).Result()
	if err != nil {
		return fmt.Errorf("redis session: delete by user: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		sess, err := s.Get(ctx, token)
		if err == nil {
			pipe.Del(ctx, idKeyPrefix+sess.ID)
		}
		pipe.Del(ctx, tokenKeyPrefix+token)
	}
	pipe.Del(ctx, userKeyPrefix+userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session: delete by user: %w", err)
	}
	return nil
}

func (s *Store) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	token, err := s.client.Get(ctx, idKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return session.ErrNotFound
		}
		return fmt.Errorf("redis session: touch lookup: %w", err)
	}

	sess, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	sess.LastActiveAt = lastActiveAt

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redis session: marshal: %w", err)
	}
	if err := s.client.Set(ctx, tokenKeyPrefix+token, data, time.Until(sess.ExpiresAt)).Err(); err != nil {
		return fmt.Errorf("redis session: touch: %w", err)
	}
	return nil
}
