package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

type Verify2FAInput struct {
	UserID   string `validate:"required"`
	DeviceID string
	OTPToken string
}

type Verify2FAOutput struct {
	Profile entity.Profile
}

// Verify2FA marks the device session verified when the OTP matches. It never
// touches the user's Require2FA flag.
func (s *Usecase) Verify2FA(ctx context.Context, in Verify2FAInput) (*Verify2FAOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify2FA")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.checkOTP(ctx, in.UserID, in.OTPToken)
	if err != nil {
		return nil, err
	}

	sess, err := s.verifySession(ctx, entity.SessionKey{UserID: user.ID, DeviceID: in.DeviceID})
	if err != nil {
		return nil, err
	}

	return &Verify2FAOutput{Profile: entity.NewProfile(*user, sess)}, nil
}

// checkOTP loads the user and its secret and validates token against it.
func (s *Usecase) checkOTP(ctx context.Context, userID, token string) (*entity.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	secret, err := s.repoSecret.GetSecretByUserID(ctx, user.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "totp secret not found", "user_id", user.ID)
		return nil, goerror.NewNotFound(MsgSecretNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get secret", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.totp.Validate(token, secret.Value, s.clock.Now()) {
		slog.WarnContext(ctx, "invalid totp code", "user_id", user.ID)
		return nil, goerror.NewNotAcceptable(MsgInvalidOTP)
	}

	return user, nil
}

// verifySession applies an accepted OTP to the session of key. It returns nil
// when the device has no session; no row is created in that case.
func (s *Usecase) verifySession(ctx context.Context, key entity.SessionKey) (*entity.Session, error) {
	sess, update, err := s.verifyTransition(ctx, key)
	if err != nil || !update {
		return sess, err
	}

	if err := s.repoSession.MarkSessionVerified(ctx, *sess); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark session verified", "user_id", key.UserID, "device_id", key.DeviceID, "error", err)
		return nil, goerror.NewServer(err)
	}
	s.publishVerified(ctx, key)

	return sess, nil
}

// verifyTransition loads the session of key and reports whether it still has
// to be persisted as verified. Nothing is written.
func (s *Usecase) verifyTransition(ctx context.Context, key entity.SessionKey) (*entity.Session, bool, error) {
	existing, err := s.getSession(ctx, key)
	if err != nil {
		return nil, false, err
	}

	sess, update, err := entity.VerifyTransition(existing, key)
	if err != nil {
		slog.ErrorContext(ctx, "session store returned a row for another key", "user_id", key.UserID, "error", err)
		return nil, false, goerror.NewServer(err)
	}

	if sess == nil {
		slog.WarnContext(ctx, "otp accepted for a device without session", "user_id", key.UserID, "device_id", key.DeviceID)
	}

	return sess, update, nil
}

func (s *Usecase) publishVerified(ctx context.Context, key entity.SessionKey) {
	s.publish(ctx, SessionEvent{
		Type:     SessionEventVerified,
		UserID:   key.UserID,
		DeviceID: key.DeviceID,
		State:    entity.SessionVerified,
	})
}
