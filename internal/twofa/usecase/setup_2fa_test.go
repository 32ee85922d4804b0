package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_Setup2FA(t *testing.T) {
	t.Run("no secret yet", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		_, err := f.uc.Setup2FA(context.Background(), Setup2FAInput{UserID: "u1", DeviceID: testDevice, OTPToken: "123456"})

		// Assert
		assertBusiness(t, err, goerror.CodeNotFound, MsgSecretNotFound)
	})

	t.Run("invalid code changes nothing", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		ctx := context.Background()
		login(t, f)
		_, err := f.uc.QRCode(ctx, QRCodeInput{UserID: "u1"})
		require.NoError(t, err)

		// Act
		_, err = f.uc.Setup2FA(ctx, Setup2FAInput{UserID: "u1", DeviceID: testDevice, OTPToken: "000000"})

		// Assert
		assertBusiness(t, err, goerror.CodeNotAcceptable, MsgInvalidOTP)
		user, err := f.store.GetUserByID(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, user.Require2FA)
	})

	t.Run("enables the requirement and verifies the device", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		ctx := context.Background()
		login(t, f)
		_, err := f.uc.QRCode(ctx, QRCodeInput{UserID: "u1"})
		require.NoError(t, err)
		in := Setup2FAInput{UserID: "u1", DeviceID: testDevice, OTPToken: f.code(t, "u1")}

		// Act
		first, err := f.uc.Setup2FA(ctx, in)
		require.NoError(t, err)
		second, err := f.uc.Setup2FA(ctx, in)
		require.NoError(t, err)

		// Assert
		assert.True(t, first.Profile.Require2FA)
		assert.Equal(t, entity.SessionVerified, first.Profile.State())
		assert.Equal(t, first.Profile, second.Profile)

		user, err := f.store.GetUserByID(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, user.Require2FA)

		f.wait(t)
		assert.ElementsMatch(t,
			[]SessionEventType{SessionEventCreated, SessionEventVerified, SessionEventEnabled},
			f.events.types(),
		)
	})

	t.Run("without session still enables the requirement", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		ctx := context.Background()
		_, err := f.uc.QRCode(ctx, QRCodeInput{UserID: "u1"})
		require.NoError(t, err)

		// Act
		out, err := f.uc.Setup2FA(ctx, Setup2FAInput{UserID: "u1", DeviceID: testDevice, OTPToken: f.code(t, "u1")})

		// Assert
		require.NoError(t, err)
		assert.True(t, out.Profile.Require2FA)
		assert.Nil(t, out.Profile.Is2FAVerified)
		assert.Nil(t, out.Profile.LastLogin)
	})

	t.Run("session write failure restores the requirement", func(t *testing.T) {
		// Arrange
		f := newFixture(t, withFailingSessionUpdate())
		ctx := context.Background()
		login(t, f)
		_, err := f.uc.QRCode(ctx, QRCodeInput{UserID: "u1"})
		require.NoError(t, err)

		// Act
		_, err = f.uc.Setup2FA(ctx, Setup2FAInput{UserID: "u1", DeviceID: testDevice, OTPToken: f.code(t, "u1")})

		// Assert
		require.Error(t, err)
		assert.True(t, goerror.IsServer(err))
		user, err := f.store.GetUserByID(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, user.Require2FA)
	})

	t.Run("verify after setup on another device", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		ctx := context.Background()
		login(t, f)
		_, err := f.uc.QRCode(ctx, QRCodeInput{UserID: "u1"})
		require.NoError(t, err)
		_, err = f.uc.Setup2FA(ctx, Setup2FAInput{UserID: "u1", DeviceID: testDevice, OTPToken: f.code(t, "u1")})
		require.NoError(t, err)
		_, err = f.uc.Login(ctx, LoginInput{Email: testEmail, Password: testPass, DeviceID: "phone"})
		require.NoError(t, err)

		// Act
		out, err := f.uc.Verify2FA(ctx, Verify2FAInput{UserID: "u1", DeviceID: "phone", OTPToken: f.code(t, "u1")})

		// Assert
		require.NoError(t, err)
		assert.True(t, out.Profile.Require2FA)
		assert.Equal(t, entity.SessionVerified, out.Profile.State())
	})

	t.Run("one transaction when the store supports it", func(t *testing.T) {
		// Arrange
		tx := &txSetup{}
		f := newFixture(t, withTxSetup(tx))
		ctx := context.Background()
		login(t, f)
		_, err := f.uc.QRCode(ctx, QRCodeInput{UserID: "u1"})
		require.NoError(t, err)
		in := Setup2FAInput{UserID: "u1", DeviceID: testDevice, OTPToken: f.code(t, "u1")}

		// Act
		first, err := f.uc.Setup2FA(ctx, in)
		require.NoError(t, err)
		second, err := f.uc.Setup2FA(ctx, in)
		require.NoError(t, err)

		// Assert
		assert.Equal(t, 1, tx.calls)
		assert.True(t, first.Profile.Require2FA)
		assert.Equal(t, entity.SessionVerified, first.Profile.State())
		assert.Equal(t, first.Profile, second.Profile)

		f.wait(t)
		assert.ElementsMatch(t,
			[]SessionEventType{SessionEventCreated, SessionEventVerified, SessionEventEnabled},
			f.events.types(),
		)
	})

	t.Run("failed transaction leaves both records untouched", func(t *testing.T) {
		// Arrange
		tx := &txSetup{fail: true}
		f := newFixture(t, withTxSetup(tx))
		ctx := context.Background()
		login(t, f)
		_, err := f.uc.QRCode(ctx, QRCodeInput{UserID: "u1"})
		require.NoError(t, err)

		// Act
		_, err = f.uc.Setup2FA(ctx, Setup2FAInput{UserID: "u1", DeviceID: testDevice, OTPToken: f.code(t, "u1")})

		// Assert
		require.Error(t, err)
		assert.True(t, goerror.IsServer(err))
		user, err := f.store.GetUserByID(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, user.Require2FA)
		sess, err := f.store.GetSession(ctx, entity.SessionKey{UserID: "u1", DeviceID: testDevice})
		require.NoError(t, err)
		assert.False(t, sess.Is2FAVerified)

		f.wait(t)
		assert.Equal(t, []SessionEventType{SessionEventCreated}, f.events.types())
	})
}
