package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

// LoginInput carries no validation rules: a blank email is an unknown user
// and a blank password a mismatch, both answered by the lookups below.
type LoginInput struct {
	Email    string
	Password string
	DeviceID string
}

type LoginOutput struct {
	Profile entity.Profile
}

func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	email := strings.TrimSpace(in.Email)
	user, err := s.repoUser.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "email", email)
		return nil, goerror.NewNotFound(MsgUserNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.password.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, goerror.NewNotAcceptable(MsgWrongPassword)
	}

	key := entity.SessionKey{UserID: user.ID, DeviceID: in.DeviceID}
	existing, err := s.getSession(ctx, key)
	if err != nil {
		return nil, err
	}

	sess, insert, err := entity.LoginTransition(existing, s.uid.Generate(), key, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "session store returned a row for another key", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if insert {
		if err := s.repoSession.CreateSession(ctx, sess); err != nil {
			slog.ErrorContext(ctx, "failed to repo create session", "user_id", user.ID, "device_id", key.DeviceID, "error", err)
			return nil, goerror.NewServer(err)
		}

		s.publish(ctx, SessionEvent{
			Type:     SessionEventCreated,
			UserID:   user.ID,
			DeviceID: key.DeviceID,
			State:    entity.StateOf(&sess),
		})
	}

	return &LoginOutput{Profile: entity.NewProfile(*user, &sess)}, nil
}
