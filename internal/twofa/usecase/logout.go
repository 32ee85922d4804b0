package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

type LogoutInput struct {
	UserID   string `validate:"required"`
	DeviceID string
}

type LogoutOutput struct {
	LoggedOut bool
}

func (s *Usecase) Logout(ctx context.Context, in LogoutInput) (*LogoutOutput, error) {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.getUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	key := entity.SessionKey{UserID: user.ID, DeviceID: in.DeviceID}
	deleted, err := s.repoSession.DeleteSessions(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete sessions", "user_id", user.ID, "device_id", key.DeviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if deleted > 0 {
		s.publish(ctx, SessionEvent{
			Type:     SessionEventLoggedOut,
			UserID:   user.ID,
			DeviceID: key.DeviceID,
			State:    entity.SessionUnauthenticated,
		})
	}

	return &LogoutOutput{LoggedOut: true}, nil
}
