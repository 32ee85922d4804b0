//go:build integration

package db

import (
	"context"
	"crypto/rand"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/pkg/instrument"
	"github.com/shandysiswandi/gotwofa/internal/pkg/mfa"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations")
}

func newTestDB(t *testing.T) (*DB, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("twofa"),
		postgres.WithUsername("twofa"),
		postgres.WithPassword("twofa"),
		postgres.WithInitScripts(filepath.Join(migrationsDir(t), "0001_init.sql")),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `INSERT INTO twofa_users (id, email, username, password) VALUES ('u1', 'alice@example.com', 'alice', 's3cret')`)
	require.NoError(t, err)

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)
	enc := mfa.NewAESGCMEncryptor(mfa.StaticKeyProvider{KeyBytes: key})

	return NewDB(pool, enc, instrument.NewNoop()), pool
}

func TestDB_Integration(t *testing.T) {
	s, pool := newTestDB(t)
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		u, err := s.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)

		_, err = s.GetUserByID(ctx, "ghost")
		assert.ErrorIs(t, err, goerror.ErrNotFound)

		require.NoError(t, s.UpdateUserRequire2FA(ctx, "u1", true))
		u, err = s.GetUserByID(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, u.Require2FA)

		assert.ErrorIs(t, s.UpdateUserRequire2FA(ctx, "ghost", true), goerror.ErrNotFound)
	})

	t.Run("secrets are sealed and unique", func(t *testing.T) {
		require.NoError(t, s.CreateSecret(ctx, entity.Secret{ID: 1, UserID: "u1", Value: "JBSWY3DPEHPK3PXP"}))
		err := s.CreateSecret(ctx, entity.Secret{ID: 2, UserID: "u1", Value: "KRSXG5CTMVRXEZLU"})
		assert.ErrorIs(t, err, goerror.ErrConflict)

		var stored string
		require.NoError(t, pool.QueryRow(ctx, `SELECT value FROM twofa_secrets WHERE user_id = 'u1'`).Scan(&stored))
		assert.NotEqual(t, "JBSWY3DPEHPK3PXP", stored)

		sec, err := s.GetSecretByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", sec.Value)
	})

	t.Run("sessions", func(t *testing.T) {
		key := entity.SessionKey{UserID: "u1", DeviceID: "Mozilla/5.0"}
		now := time.Now().UTC().Truncate(time.Millisecond)

		_, err := s.GetSession(ctx, key)
		assert.ErrorIs(t, err, goerror.ErrNotFound)

		require.NoError(t, s.CreateSession(ctx, entity.NewPendingSession(20, key, now)))
		require.NoError(t, s.CreateSession(ctx, entity.NewPendingSession(30, key, now.Add(time.Minute))))

		got, err := s.GetSession(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(20), got.ID)
		assert.True(t, now.Equal(got.LastLogin))

		require.NoError(t, s.MarkSessionVerified(ctx, *got))
		got, err = s.GetSession(ctx, key)
		require.NoError(t, err)
		assert.True(t, got.Is2FAVerified)

		n, err := s.DeleteSessions(ctx, key)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		assert.ErrorIs(t, s.MarkSessionVerified(ctx, *got), goerror.ErrNotFound)
	})

	t.Run("setup commits both writes or neither", func(t *testing.T) {
		_, err := pool.Exec(ctx, `INSERT INTO twofa_users (id, email, username, password) VALUES ('u2', 'bob@example.com', 'bob', 's3cret')`)
		require.NoError(t, err)
		key := entity.SessionKey{UserID: "u2", DeviceID: "curl/8.0"}
		require.NoError(t, s.CreateSession(ctx, entity.NewPendingSession(40, key, time.Now().UTC())))

		ghost := entity.NewPendingSession(41, key, time.Now().UTC())
		err = s.CompleteSetup(ctx, "u2", true, &ghost)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
		u, err := s.GetUserByID(ctx, "u2")
		require.NoError(t, err)
		assert.False(t, u.Require2FA)

		sess, err := s.GetSession(ctx, key)
		require.NoError(t, err)
		require.NoError(t, s.CompleteSetup(ctx, "u2", true, sess))
		u, err = s.GetUserByID(ctx, "u2")
		require.NoError(t, err)
		assert.True(t, u.Require2FA)
		sess, err = s.GetSession(ctx, key)
		require.NoError(t, err)
		assert.True(t, sess.Is2FAVerified)

		assert.ErrorIs(t, s.CompleteSetup(ctx, "ghost", true, nil), goerror.ErrNotFound)
	})
}
