package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

type Setup2FAInput struct {
	UserID   string `validate:"required"`
	DeviceID string
	OTPToken string
}

type Setup2FAOutput struct {
	Profile entity.Profile
}

// Setup2FA completes enrollment: the OTP must match the stored secret, then
// Require2FA is enabled and the device session is marked verified.
//
// With a repoSetup both writes share one transaction. Otherwise they go to
// separate stores, and when the session write fails after Require2FA was
// enabled the flag is restored before returning.
func (s *Usecase) Setup2FA(ctx context.Context, in Setup2FAInput) (*Setup2FAOutput, error) {
	ctx, span := s.startSpan(ctx, "Setup2FA")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.checkOTP(ctx, in.UserID, in.OTPToken)
	if err != nil {
		return nil, err
	}

	key := entity.SessionKey{UserID: user.ID, DeviceID: in.DeviceID}
	sess, update, err := s.verifyTransition(ctx, key)
	if err != nil {
		return nil, err
	}

	enabled := entity.EnableRequirement(user)
	if s.repoSetup != nil {
		err = s.completeSetupTx(ctx, user.ID, enabled, sess, update)
	} else {
		err = s.completeSetup(ctx, user.ID, enabled, sess, update)
	}
	if err != nil {
		return nil, err
	}

	if update {
		s.publishVerified(ctx, key)
	}
	if enabled {
		s.publish(ctx, SessionEvent{
			Type:     SessionEventEnabled,
			UserID:   user.ID,
			DeviceID: in.DeviceID,
			State:    entity.StateOf(sess),
		})
	}

	return &Setup2FAOutput{Profile: entity.NewProfile(*user, sess)}, nil
}

func (s *Usecase) completeSetupTx(ctx context.Context, userID string, enable bool, sess *entity.Session, update bool) error {
	if !enable && !update {
		return nil
	}

	var verified *entity.Session
	if update {
		verified = sess
	}

	if err := s.repoSetup.CompleteSetup(ctx, userID, enable, verified); err != nil {
		slog.ErrorContext(ctx, "failed to repo complete setup", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

func (s *Usecase) completeSetup(ctx context.Context, userID string, enable bool, sess *entity.Session, update bool) error {
	if enable {
		if err := s.repoUser.UpdateUserRequire2FA(ctx, userID, true); err != nil {
			slog.ErrorContext(ctx, "failed to repo update user require 2fa", "user_id", userID, "error", err)
			return goerror.NewServer(err)
		}
	}

	if !update {
		return nil
	}

	if err := s.repoSession.MarkSessionVerified(ctx, *sess); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark session verified", "user_id", userID, "device_id", sess.DeviceID, "error", err)
		if enable {
			s.restoreRequire2FA(ctx, userID)
		}
		return goerror.NewServer(err)
	}

	return nil
}

func (s *Usecase) restoreRequire2FA(ctx context.Context, userID string) {
	if err := s.repoUser.UpdateUserRequire2FA(ctx, userID, false); err != nil {
		slog.ErrorContext(ctx, "failed to restore user require 2fa", "user_id", userID, "error", err)
		return
	}
	slog.WarnContext(ctx, "restored user require 2fa after session update failure", "user_id", userID)
}
