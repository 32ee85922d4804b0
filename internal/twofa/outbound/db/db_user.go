package db

import (
	"context"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	row, err := s.query.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, s.mapError(err)
	}

	return toUser(row), nil
}

func (s *DB) GetUserByID(ctx context.Context, id string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	row, err := s.query.GetUserByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	return toUser(row), nil
}

func (s *DB) UpdateUserRequire2FA(ctx context.Context, id string, require2FA bool) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserRequire2FA")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.query.UpdateUserRequire2FA(ctx, id, require2FA)
	if err != nil {
		return s.mapError(err)
	}
	if rows == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func toUser(r userRow) *entity.User {
	return &entity.User{
		ID:         r.ID,
		Email:      r.Email,
		Username:   r.Username,
		Password:   r.Password,
		Require2FA: r.Require2FA,
	}
}
