package db

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/gotwofa/internal/pkg/mfa"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

func (s *DB) GetSecretByUserID(ctx context.Context, userID string) (_ *entity.Secret, err error) {
	ctx, span := s.startSpan(ctx, "GetSecretByUserID")
	defer func() { s.endSpan(span, err) }()

	row, err := s.query.GetSecretByUserID(ctx, userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	value, err := mfa.OpenString(s.enc, row.Value, mfa.OTPSeedScope(row.UserID))
	if err != nil {
		return nil, fmt.Errorf("open totp secret: %w", err)
	}

	return &entity.Secret{ID: row.ID, UserID: row.UserID, Value: value}, nil
}

func (s *DB) CreateSecret(ctx context.Context, secret entity.Secret) (err error) {
	ctx, span := s.startSpan(ctx, "CreateSecret")
	defer func() { s.endSpan(span, err) }()

	sealed, err := mfa.SealString(s.enc, secret.Value, mfa.OTPSeedScope(secret.UserID))
	if err != nil {
		return fmt.Errorf("seal totp secret: %w", err)
	}

	return s.mapError(s.query.CreateSecret(ctx, secretRow{
		ID:     secret.ID,
		UserID: secret.UserID,
		Value:  sealed,
	}))
}
