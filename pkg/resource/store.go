package resource

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Store implementations when no item matches
// the requested ID. Endpoints translate it into a 404 response.
var ErrNotFound = errors.New("resource not found")

// Store abstracts persistence for a resource type. Implementations may
// be backed by a database, an external API, or memory.
type Store[T any] interface {
	// List returns all items.
	List(ctx context.Context) ([]T, error)

	// Get returns the item with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (T, error)

	// Create persists a new item and returns it with any
	// store-assigned fields populated.
	Create(ctx context.Context, item T) (T, error)

	// Update persists changes to an existing item.
	// Returns ErrNotFound if the item does not exist.
	Update(ctx context.Context, item T) (T, error)

	// Delete removes the item with the given ID.
	// Returns ErrNotFound if the item does not exist.
	Delete(ctx context.Context, id string) error
}

// Identifiable lets a model expose its own ID to MemoryStore without a
// custom extractor.
type Identifiable interface {
	ResourceID() string
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption[T any] func(*MemoryStore[T])

// WithIDFunc overrides how MemoryStore reads an item's ID.
// Without it the item must implement Identifiable.
func WithIDFunc[T any](fn func(T) string) MemoryStoreOption[T] {
	return func(s *MemoryStore[T]) {
		s.getID = fn
	}
}

// WithIDSetter tells MemoryStore how to assign a generated ID to an
// item created without one.
func WithIDSetter[T any](fn func(*T, string)) MemoryStoreOption[T] {
	return func(s *MemoryStore[T]) {
		s.setID = fn
	}
}

// MemoryStore is a concurrency-safe in-memory Store. Intended for tests
// and small apps; List returns items in insertion order.
type MemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
	getID func(T) string
	setID func(*T, string)
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore[T any](opts ...MemoryStoreOption[T]) *MemoryStore[T] {
	s := &MemoryStore[T]{
		items: make(map[string]T),
		getID: func(item T) string {
			if ident, ok := any(item).(Identifiable); ok {
				return ident.ResourceID()
			}
			return ""
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore[T]) List(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]T, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.items[id])
	}
	return items, nil
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return item, nil
}

func (s *MemoryStore[T]) Create(_ context.Context, item T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.getID(item)
	if id == "" {
		id = uuid.NewString()
		if s.setID != nil {
			s.setID(&item, id)
		}
	}

	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = item
	return item, nil
}

func (s *MemoryStore[T]) Update(_ context.Context, item T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.getID(item)
	if _, ok := s.items[id]; !ok {
		var zero T
		return zero, ErrNotFound
	}
	s.items[id] = item
	return item, nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// Len reports the number of stored items.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
