package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_Profile(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.Profile(context.Background(), ProfileInput{UserID: "ghost", DeviceID: testDevice})

		assertBusiness(t, err, goerror.CodeNotFound, MsgUserNotFound)
	})

	t.Run("without session", func(t *testing.T) {
		f := newFixture(t)

		out, err := f.uc.Profile(context.Background(), ProfileInput{UserID: "u1", DeviceID: testDevice})

		require.NoError(t, err)
		assert.Equal(t, testEmail, out.Profile.Email)
		assert.Nil(t, out.Profile.Is2FAVerified)
		assert.Nil(t, out.Profile.LastLogin)
	})

	t.Run("merges the device session", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.store.CreateSession(ctx, entity.Session{ID: 1, UserID: "u1", DeviceID: testDevice, Is2FAVerified: true, LastLogin: testNow}))

		out, err := f.uc.Profile(ctx, ProfileInput{UserID: "u1", DeviceID: testDevice})

		require.NoError(t, err)
		assert.Equal(t, entity.SessionVerified, out.Profile.State())
		assert.Equal(t, testNow, *out.Profile.LastLogin)
	})
}
