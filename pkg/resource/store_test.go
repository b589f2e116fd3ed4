package resource_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restkit/pkg/resource"
)

type note struct {
	ID   string
	Text string
}

func (n note) ResourceID() string { return n.ID }

func newNoteStore() *resource.MemoryStore[note] {
	return resource.NewMemoryStore(
		resource.WithIDSetter(func(n *note, id string) { n.ID = id }),
	)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("create keeps supplied ID", func(t *testing.T) {
		t.Parallel()

		store := newNoteStore()
		created, err := store.Create(ctx, note{ID: "n1", Text: "first"})
		require.NoError(t, err)
		assert.Equal(t, "n1", created.ID)

		got, err := store.Get(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, "first", got.Text)
	})

	t.Run("create generates an ID when missing", func(t *testing.T) {
		t.Parallel()

		store := newNoteStore()
		created, err := store.Create(ctx, note{Text: "no id"})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		got, err := store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "no id", got.Text)
	})

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		t.Parallel()

		store := newNoteStore()
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, resource.ErrNotFound)
	})

	t.Run("update existing item", func(t *testing.T) {
		t.Parallel()

		store := newNoteStore()
		_, err := store.Create(ctx, note{ID: "n1", Text: "old"})
		require.NoError(t, err)

		updated, err := store.Update(ctx, note{ID: "n1", Text: "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", updated.Text)

		got, err := store.Get(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Text)
	})

	t.Run("update missing returns ErrNotFound", func(t *testing.T) {
		t.Parallel()

		store := newNoteStore()
		_, err := store.Update(ctx, note{ID: "ghost"})
		assert.ErrorIs(t, err, resource.ErrNotFound)
	})

	t.Run("delete removes item", func(t *testing.T) {
		t.Parallel()

		store := newNoteStore()
		_, err := store.Create(ctx, note{ID: "n1"})
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, "n1"))
		assert.Equal(t, 0, store.Len())
		assert.ErrorIs(t, store.Delete(ctx, "n1"), resource.ErrNotFound)
	})

	t.Run("list preserves insertion order", func(t *testing.T) {
		t.Parallel()

		store := newNoteStore()
		for _, id := range []string{"c", "a", "b"} {
			_, err := store.Create(ctx, note{ID: id})
			require.NoError(t, err)
		}

		items, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "c", items[0].ID)
		assert.Equal(t, "a", items[1].ID)
		assert.Equal(t, "b", items[2].ID)
	})

	t.Run("custom ID extractor", func(t *testing.T) {
		t.Parallel()

		type row struct{ Key string }
		store := resource.NewMemoryStore(
			resource.WithIDFunc(func(r row) string { return r.Key }),
		)

		_, err := store.Create(ctx, row{Key: "k1"})
		require.NoError(t, err)

		got, err := store.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, "k1", got.Key)
	})
}
