package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/pkg/instrument"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb, "test", instrument.NewNoop()), mr
}

func TestCache_SessionLifecycle(t *testing.T) {
	// Arrange
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := entity.SessionKey{UserID: "u1", DeviceID: "curl/8.5.0"}
	now := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

	// Act & Assert
	_, err := c.GetSession(ctx, key)
	require.ErrorIs(t, err, goerror.ErrNotFound)

	require.NoError(t, c.CreateSession(ctx, entity.NewPendingSession(10, key, now)))
	got, err := c.GetSession(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)
	assert.Equal(t, key, got.Key())
	assert.False(t, got.Is2FAVerified)
	assert.True(t, now.Equal(got.LastLogin))

	require.NoError(t, c.MarkSessionVerified(ctx, *got))
	got, err = c.GetSession(ctx, key)
	require.NoError(t, err)
	assert.True(t, got.Is2FAVerified)

	assert.Len(t, mr.Keys(), 1)

	n, err := c.DeleteSessions(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = c.DeleteSessions(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
	assert.Empty(t, mr.Keys())
}

func TestCache_CreateSession_FirstWriterWins(t *testing.T) {
	// Arrange
	c, _ := newTestCache(t)
	ctx := context.Background()
	key := entity.SessionKey{UserID: "u1", DeviceID: "dev"}
	now := time.Now().UTC()

	// Act
	require.NoError(t, c.CreateSession(ctx, entity.NewPendingSession(1, key, now)))
	require.NoError(t, c.CreateSession(ctx, entity.NewPendingSession(2, key, now.Add(time.Hour))))

	// Assert
	got, err := c.GetSession(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestCache_MarkSessionVerified_Missing(t *testing.T) {
	c, _ := newTestCache(t)

	err := c.MarkSessionVerified(context.Background(), entity.Session{ID: 1, UserID: "u1", DeviceID: "dev"})

	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestCache_KeysSeparateDevices(t *testing.T) {
	c, _ := newTestCache(t)

	a := c.key(entity.SessionKey{UserID: "u1", DeviceID: "a"})
	b := c.key(entity.SessionKey{UserID: "u1", DeviceID: "b"})

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "test:session:u1:")
}

func TestCache_GetSession_Corrupt(t *testing.T) {
	// Arrange
	c, mr := newTestCache(t)
	key := entity.SessionKey{UserID: "u1", DeviceID: "dev"}
	mr.HSet(c.key(key), fieldID, "not-a-number")

	// Act
	_, err := c.GetSession(context.Background(), key)

	// Assert
	assert.ErrorIs(t, err, ErrCorruptSession)
}
