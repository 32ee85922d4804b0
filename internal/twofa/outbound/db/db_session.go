package db

import (
	"context"

	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

func (s *DB) GetSession(ctx context.Context, key entity.SessionKey) (_ *entity.Session, err error) {
	ctx, span := s.startSpan(ctx, "GetSession")
	defer func() { s.endSpan(span, err) }()

	row, err := s.query.GetSession(ctx, key.UserID, key.DeviceID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &entity.Session{
		ID:            row.ID,
		UserID:        row.UserID,
		DeviceID:      row.DeviceID,
		Is2FAVerified: row.Is2FAVerified,
		LastLogin:     row.LastLogin,
	}, nil
}

func (s *DB) CreateSession(ctx context.Context, sess entity.Session) (err error) {
	ctx, span := s.startSpan(ctx, "CreateSession")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.query.CreateSession(ctx, sessionRow{
		ID:            sess.ID,
		UserID:        sess.UserID,
		DeviceID:      sess.DeviceID,
		Is2FAVerified: sess.Is2FAVerified,
		LastLogin:     sess.LastLogin,
	}))
}

func (s *DB) MarkSessionVerified(ctx context.Context, sess entity.Session) (err error) {
	ctx, span := s.startSpan(ctx, "MarkSessionVerified")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.query.MarkSessionVerified(ctx, sess.ID, sess.UserID, sess.DeviceID)
	if err != nil {
		return s.mapError(err)
	}
	if rows == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) DeleteSessions(ctx context.Context, key entity.SessionKey) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteSessions")
	defer func() { s.endSpan(span, err) }()

	n, err := s.query.DeleteSessions(ctx, key.UserID, key.DeviceID)
	if err != nil {
		return 0, s.mapError(err)
	}

	return n, nil
}
