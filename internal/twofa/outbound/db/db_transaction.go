package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

// CompleteSetup enables Require2FA for userID when enable is set and marks
// verified as verified when it is non-nil, in one transaction.
func (s *DB) CompleteSetup(ctx context.Context, userID string, enable bool, verified *entity.Session) (err error) {
	ctx, span := s.startSpan(ctx, "CompleteSetup")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	wtx := s.query.WithTx(tx)

	if enable {
		rows, err := wtx.UpdateUserRequire2FA(ctx, userID, true)
		if err != nil {
			return s.mapError(err)
		}
		if rows == 0 {
			return goerror.ErrNotFound
		}
	}

	if verified != nil {
		rows, err := wtx.MarkSessionVerified(ctx, verified.ID, verified.UserID, verified.DeviceID)
		if err != nil {
			return s.mapError(err)
		}
		if rows == 0 {
			return goerror.ErrNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}
