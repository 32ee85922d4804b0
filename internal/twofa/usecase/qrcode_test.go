package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/pkg/qrcode"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
	"github.com/shandysiswandi/gotwofa/internal/twofa/outbound/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_QRCode(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		_, err := f.uc.QRCode(context.Background(), QRCodeInput{UserID: "ghost"})

		// Assert
		assertBusiness(t, err, goerror.CodeNotFound, MsgUserNotFound)
	})

	t.Run("creates the secret once", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		ctx := context.Background()

		// Act
		first, err := f.uc.QRCode(ctx, QRCodeInput{UserID: "u1"})
		require.NoError(t, err)
		sec1, err := f.store.GetSecretByUserID(ctx, "u1")
		require.NoError(t, err)

		second, err := f.uc.QRCode(ctx, QRCodeInput{UserID: "u1"})
		require.NoError(t, err)
		sec2, err := f.store.GetSecretByUserID(ctx, "u1")
		require.NoError(t, err)

		// Assert
		assert.True(t, strings.HasPrefix(first.QRCode, qrcode.DataURIPrefix))
		assert.Equal(t, first.QRCode, second.QRCode)
		assert.Equal(t, sec1.Value, sec2.Value)
		assert.NotContains(t, first.QRCode, sec1.Value)
	})

	t.Run("reuses a secret stored concurrently", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		ctx := context.Background()
		raced := &racingSecrets{Store: f.store, winner: entity.Secret{ID: 99, UserID: "u1", Value: "JBSWY3DPEHPK3PXP"}}
		f.uc.repoSecret = raced

		// Act
		out, err := f.uc.QRCode(ctx, QRCodeInput{UserID: "u1"})

		// Assert
		require.NoError(t, err)
		stored, err := f.store.GetSecretByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", stored.Value)

		uri, err := f.uc.totp.KeyURI("alice", raced.winner.Value)
		require.NoError(t, err)
		want, err := f.uc.qr.DataURI(uri)
		require.NoError(t, err)
		assert.Equal(t, want, out.QRCode)
	})
}

// racingSecrets stores winner right before the first insert, as if another
// request had created the secret between the read and the write.
type racingSecrets struct {
	*memory.Store
	winner entity.Secret
}

func (r *racingSecrets) CreateSecret(ctx context.Context, secret entity.Secret) error {
	if err := r.Store.CreateSecret(ctx, r.winner); err != nil {
		return err
	}
	return r.Store.CreateSecret(ctx, secret)
}
