package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type userRow struct {
	ID         string
	Email      string
	Username   string
	Password   string
	Require2FA bool
}

const getUserByEmail = `SELECT id, email, username, password, require_2fa
FROM twofa_users
WHERE email = $1
LIMIT 1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (userRow, error) {
	var r userRow
	err := q.db.QueryRow(ctx, getUserByEmail, email).Scan(&r.ID, &r.Email, &r.Username, &r.Password, &r.Require2FA)
	return r, err
}

const getUserByID = `SELECT id, email, username, password, require_2fa
FROM twofa_users
WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id string) (userRow, error) {
	var r userRow
	err := q.db.QueryRow(ctx, getUserByID, id).Scan(&r.ID, &r.Email, &r.Username, &r.Password, &r.Require2FA)
	return r, err
}

const updateUserRequire2FA = `UPDATE twofa_users
SET require_2fa = $2, updated_at = now()
WHERE id = $1`

func (q *Queries) UpdateUserRequire2FA(ctx context.Context, id string, require2FA bool) (int64, error) {
	tag, err := q.db.Exec(ctx, updateUserRequire2FA, id, require2FA)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type secretRow struct {
	ID     int64
	UserID string
	Value  string
}

const getSecretByUserID = `SELECT id, user_id, value
FROM twofa_secrets
WHERE user_id = $1`

func (q *Queries) GetSecretByUserID(ctx context.Context, userID string) (secretRow, error) {
	var r secretRow
	err := q.db.QueryRow(ctx, getSecretByUserID, userID).Scan(&r.ID, &r.UserID, &r.Value)
	return r, err
}

const createSecret = `INSERT INTO twofa_secrets (id, user_id, value)
VALUES ($1, $2, $3)`

func (q *Queries) CreateSecret(ctx context.Context, arg secretRow) error {
	_, err := q.db.Exec(ctx, createSecret, arg.ID, arg.UserID, arg.Value)
	return err
}

type sessionRow struct {
	ID            int64
	UserID        string
	DeviceID      string
	Is2FAVerified bool
	LastLogin     time.Time
}

// Snowflake ids grow with time, so the smallest id is the first row stored.
const getSession = `SELECT id, user_id, device_id, is_2fa_verified, last_login
FROM twofa_sessions
WHERE user_id = $1 AND device_id = $2
ORDER BY id ASC
LIMIT 1`

func (q *Queries) GetSession(ctx context.Context, userID, deviceID string) (sessionRow, error) {
	var r sessionRow
	err := q.db.QueryRow(ctx, getSession, userID, deviceID).
		Scan(&r.ID, &r.UserID, &r.DeviceID, &r.Is2FAVerified, &r.LastLogin)
	return r, err
}

const createSession = `INSERT INTO twofa_sessions (id, user_id, device_id, is_2fa_verified, last_login)
VALUES ($1, $2, $3, $4, $5)`

func (q *Queries) CreateSession(ctx context.Context, arg sessionRow) error {
	_, err := q.db.Exec(ctx, createSession, arg.ID, arg.UserID, arg.DeviceID, arg.Is2FAVerified, arg.LastLogin)
	return err
}

const markSessionVerified = `UPDATE twofa_sessions
SET is_2fa_verified = TRUE
WHERE id = $1 AND user_id = $2 AND device_id = $3`

func (q *Queries) MarkSessionVerified(ctx context.Context, id int64, userID, deviceID string) (int64, error) {
	tag, err := q.db.Exec(ctx, markSessionVerified, id, userID, deviceID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteSessions = `DELETE FROM twofa_sessions
WHERE user_id = $1 AND device_id = $2`

func (q *Queries) DeleteSessions(ctx context.Context, userID, deviceID string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteSessions, userID, deviceID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}
