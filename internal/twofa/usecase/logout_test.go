package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_Logout(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		_, err := f.uc.Logout(context.Background(), LogoutInput{UserID: "ghost", DeviceID: testDevice})

		// Assert
		assertBusiness(t, err, goerror.CodeNotFound, MsgUserNotFound)
	})

	t.Run("no session is still a logout", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		out, err := f.uc.Logout(context.Background(), LogoutInput{UserID: "u1", DeviceID: testDevice})

		// Assert
		require.NoError(t, err)
		assert.True(t, out.LoggedOut)
		f.wait(t)
		assert.Empty(t, f.events.types())
	})

	t.Run("removes every row of the device only", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		ctx := context.Background()
		for i, dev := range []string{testDevice, testDevice, "other"} {
			require.NoError(t, f.store.CreateSession(ctx, entity.Session{ID: int64(i + 1), UserID: "u1", DeviceID: dev, LastLogin: testNow}))
		}

		// Act
		out, err := f.uc.Logout(ctx, LogoutInput{UserID: "u1", DeviceID: testDevice})

		// Assert
		require.NoError(t, err)
		assert.True(t, out.LoggedOut)
		_, err = f.store.GetSession(ctx, entity.SessionKey{UserID: "u1", DeviceID: testDevice})
		assert.ErrorIs(t, err, goerror.ErrNotFound)
		_, err = f.store.GetSession(ctx, entity.SessionKey{UserID: "u1", DeviceID: "other"})
		assert.NoError(t, err)

		f.wait(t)
		assert.Equal(t, []SessionEventType{SessionEventLoggedOut}, f.events.types())
	})

	t.Run("login after logout starts pending again", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.store.CreateSession(ctx, entity.Session{ID: 1, UserID: "u1", DeviceID: testDevice, Is2FAVerified: true, LastLogin: testNow}))
		_, err := f.uc.Logout(ctx, LogoutInput{UserID: "u1", DeviceID: testDevice})
		require.NoError(t, err)

		// Act
		out, err := f.uc.Login(ctx, LoginInput{Email: testEmail, Password: testPass, DeviceID: testDevice})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, entity.SessionPendingVerification, out.Profile.State())
	})
}
