package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

type QRCodeInput struct {
	UserID string `validate:"required"`
}

type QRCodeOutput struct {
	QRCode string
}

// QRCode returns the provisioning image for the user's TOTP secret, creating
// the secret on first use. The raw secret never leaves this method.
func (s *Usecase) QRCode(ctx context.Context, in QRCodeInput) (*QRCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "QRCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.getUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	secret, err := s.issueOrFetchSecret(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	uri, err := s.totp.KeyURI(user.Username, secret.Value)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build totp key uri", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	image, err := s.qr.DataURI(uri)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render qr code", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &QRCodeOutput{QRCode: image}, nil
}

func (s *Usecase) issueOrFetchSecret(ctx context.Context, userID string) (*entity.Secret, error) {
	secret, err := s.repoSecret.GetSecretByUserID(ctx, userID)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get secret", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	value, err := s.totp.GenerateSecret()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	created := entity.Secret{ID: s.uid.Generate(), UserID: userID, Value: value}
	err = s.repoSecret.CreateSecret(ctx, created)
	if err == nil {
		return &created, nil
	}
	if !errors.Is(err, goerror.ErrConflict) {
		slog.ErrorContext(ctx, "failed to repo create secret", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	// A concurrent request stored its secret first; that one is canonical.
	slog.WarnContext(ctx, "secret already created concurrently", "user_id", userID)
	secret, err = s.repoSecret.GetSecretByUserID(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get secret after conflict", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return secret, nil
}
