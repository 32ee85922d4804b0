package usecase

import (
	"context"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

type ProfileInput struct {
	UserID   string `validate:"required"`
	DeviceID string
}

type ProfileOutput struct {
	Profile entity.Profile
}

func (s *Usecase) Profile(ctx context.Context, in ProfileInput) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.getUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	sess, err := s.getSession(ctx, entity.SessionKey{UserID: user.ID, DeviceID: in.DeviceID})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Profile: entity.NewProfile(*user, sess)}, nil
}
