//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msgboard/msgboard/internal/model"
	"github.com/msgboard/msgboard/internal/testutil"
)

func TestIntegrationCache_UserRoundTrip(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	user := &model.UserWithMessages{
		User:     model.User{ID: "u1", Name: "Alice", Email: "a@x.com", CreatedAt: now},
		Messages: []model.Message{},
	}

	_, err := c.GetUser(ctx, "u1")
	require.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.SetUser(ctx, user, 0))

	got, err := c.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.NotNil(t, got.Messages)
	assert.True(t, got.CreatedAt.Equal(now))

	require.NoError(t, c.InvalidateUser(ctx, "u1"))
	_, err = c.GetUser(ctx, "u1")
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestIntegrationCache_InvalidateMessages(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	for _, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, c.SetMessage(ctx, &model.MessageWithUser{
			Message: model.Message{ID: id, Content: "hi", UserID: "u1"},
			User:    model.User{ID: "u1"},
		}, 0))
	}

	require.NoError(t, c.InvalidateMessages(ctx, "m1", "m2"))
	require.NoError(t, c.InvalidateMessages(ctx))

	_, err := c.GetMessage(ctx, "m1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.GetMessage(ctx, "m2")
	assert.ErrorIs(t, err, ErrCacheMiss)

	kept, err := c.GetMessage(ctx, "m3")
	require.NoError(t, err)
	assert.Equal(t, "u1", kept.User.ID)
}

func TestIntegrationCache_StaleFillAfterInvalidateIsDropped(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	gen, err := c.UserGeneration(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, gen)

	// The user is deleted while a reader still holds the old row.
	require.NoError(t, c.InvalidateUser(ctx, "u1"))

	stale := &model.UserWithMessages{User: model.User{ID: "u1", Name: "Alice"}}
	require.NoError(t, c.SetUser(ctx, stale, gen))

	_, err = c.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	fresh, err := c.UserGeneration(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh)

	require.NoError(t, c.SetUser(ctx, stale, fresh))
	_, err = c.GetUser(ctx, "u1")
	assert.NoError(t, err)
}

func TestIntegrationCache_InvalidateMessagesBumpsGenerations(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	require.NoError(t, c.InvalidateMessages(ctx, "m1", "m2"))
	require.NoError(t, c.InvalidateMessages(ctx, "m1"))

	gen, err := c.MessageGeneration(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)

	gen, err = c.MessageGeneration(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	ttl, err := c.Client().PTTL(ctx, generationKey(messageKey("m1"))).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Minute)
}

func TestIntegrationCache_CorruptEntryIsMiss(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	require.NoError(t, c.Client().Set(ctx, messageKey("bad"), "{not json", time.Minute).Err())

	_, err := c.GetMessage(ctx, "bad")
	assert.ErrorIs(t, err, ErrCacheMiss)

	exists, err := c.Client().Exists(ctx, messageKey("bad")).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL, time.Minute)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}
