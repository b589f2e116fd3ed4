package session

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore is an in-memory session Store for tests and single-process
// deployments. Sessions vanish on restart; a background janitor evicts
// expired entries.
type MemoryStore struct {
	mu       sync.RWMutex
	byToken  map[string]*Session
	byID     map[string]string // id -> token
	stopOnce sync.Once
	stop     chan struct{}
}

// NewMemoryStore creates a memory store with a janitor running at the
// given interval. A non-positive interval disables the janitor.
func NewMemoryStore(janitorInterval time.Duration) *MemoryStore {
	ms := &MemoryStore{
		byToken: make(map[string]*Session),
		byID:    make(map[string]string),
		stop:    make(chan struct{}),
	}
	if janitorInterval > 0 {
		go ms.janitor(janitorInterval)
	}
	return ms
}

// Close stops the janitor goroutine.
func (ms *MemoryStore) Close() {
	ms.stopOnce.Do(func() { close(ms.stop) })
}

func (ms *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			now := time.Now()
			ms.mu.Lock()
			for token, s := range ms.byToken {
				if now.After(s.ExpiresAt) {
					delete(ms.byToken, token)
					delete(ms.byID, s.ID)
				}
			}
			ms.mu.Unlock()
		}
	}
}

func (ms *MemoryStore) Create(_ context.Context, s *Session) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.byToken[s.Token] = clone(s)
	ms.byID[s.ID] = s.Token
	return nil
}

func (ms *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	ms.mu.RLock()
	s, ok := ms.byToken[token]
	ms.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if s.IsExpired() {
		return nil, ErrExpired
	}
	return clone(s), nil
}

func (ms *MemoryStore) Update(_ context.Context, s *Session) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	oldToken, ok := ms.byID[s.ID]
	if !ok {
		return ErrNotFound
	}
	// Token rotation: drop the stale entry before re-keying.
	if oldToken != s.Token {
		delete(ms.byToken, oldToken)
	}
	ms.byToken[s.Token] = clone(s)
	ms.byID[s.ID] = s.Token
	return nil
}

func (ms *MemoryStore) Delete(_ context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if token, ok := ms.byID[id]; ok {
		delete(ms.byToken, token)
		delete(ms.byID, id)
	}
	return nil
}

func (ms *MemoryStore) DeleteByUserID(_ context.Context, userID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for token, s := range ms.byToken {
		if s.UserID != nil && *s.UserID == userID {
			delete(ms.byToken, token)
			delete(ms.byID, s.ID)
		}
	}
	return nil
}

func (ms *MemoryStore) Touch(_ context.Context, id string, lastActiveAt time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	token, ok := ms.byID[id]
	if !ok {
		return ErrNotFound
	}
	ms.byToken[token].LastActiveAt = lastActiveAt
	return nil
}

// clone copies the session so callers can't mutate stored state in place.
func clone(s *Session) *Session {
	cp := *s
	cp.Values = maps.Clone(s.Values)
	if s.UserID != nil {
		uid := *s.UserID
		cp.UserID = &uid
	}
	return &cp
}
