//go:build integration

package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restkit/pkg/redis"
	"github.com/dmitrymomot/restkit/pkg/session"
	sessionredis "github.com/dmitrymomot/restkit/pkg/session/redis"
)

const testRedisURL = "redis://localhost:6379/0"

func newTestRedisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = testRedisURL
	}

	ctx := context.Background()
	client, err := redis.Open(ctx, url)
	require.NoError(t, err, "failed to connect to Redis")

	t.Cleanup(func() {
		_ = client.FlushDB(ctx).Err()
		_ = client.Close()
	})

	return client
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	return session.New("sess-"+t.Name(), "token-"+t.Name(), time.Now().Add(time.Hour))
}

func TestStore_CreateGet(t *testing.T) {
	client := newTestRedisClient(t)
	store := sessionredis.NewStore(client)
	ctx := context.Background()

	sess := newTestSession(t)
	sess.SetValue("theme", "dark")
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, sess.ID, got.ID)
	require.Equal(t, "dark", got.Values["theme"])

	_, err = store.Get(ctx, "missing-token")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestStore_UpdateRotatesToken(t *testing.T) {
	client := newTestRedisClient(t)
	store := sessionredis.NewStore(client)
	ctx := context.Background()

	sess := newTestSession(t)
	require.NoError(t, store.Create(ctx, sess))

	oldToken := sess.Token
	sess.Token = "rotated-" + t.Name()
	require.NoError(t, store.Update(ctx, sess))

	_, err := store.Get(ctx, oldToken)
	require.ErrorIs(t, err, session.ErrNotFound)

	got, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, sess.ID, got.ID)
}

func TestStore_DeleteByUserID(t *testing.T) {
	client := newTestRedisClient(t)
	store := sessionredis.NewStore(client)
	ctx := context.Background()

	userID := "user-" + t.Name()
	var tokens []string
	for i := 0; i < 3; i++ {
		sess := session.New(
			"sess-"+t.Name()+string(rune('a'+i)),
			"token-"+t.Name()+string(rune('a'+i)),
			time.Now().Add(time.Hour),
		)
		sess.UserID = &userID
		require.NoError(t, store.Create(ctx, sess))
		tokens = append(tokens, sess.Token)
	}

	require.NoError(t, store.DeleteByUserID(ctx, userID))
	for _, token := range tokens {
		_, err := store.Get(ctx, token)
		require.ErrorIs(t, err, session.ErrNotFound)
	}
}

func TestStore_Touch(t *testing.T) {
	client := newTestRedisClient(t)
	store := sessionredis.NewStore(client)
	ctx := context.Background()

	sess := newTestSession(t)
	require.NoError(t, store.Create(ctx, sess))

	later := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	require.NoError(t, store.Touch(ctx, sess.ID, later))

	got, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	require.WithinDuration(t, later, got.LastActiveAt, time.Second)

	require.ErrorIs(t, store.Touch(ctx, "missing-id", later), session.ErrNotFound)
}
