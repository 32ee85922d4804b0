// Package memory provides process-local stores for users, TOTP secrets and
// sessions. Rows keep insertion order so a lookup returns the first stored
// match, which is how duplicate session rows are tolerated.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/twofa/entity"
)

// ErrInvalidSeed is returned when a users seed file cannot be used.
var ErrInvalidSeed = errors.New("memory: invalid users seed")

// SeedUser is the on-disk shape of a user in the seed file.
type SeedUser struct {
	ID         string `json:"_id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Require2FA bool   `json:"require_2fa"`
}

// Store keeps every table in memory. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	users    []entity.User
	secrets  []entity.Secret
	sessions []entity.Session
}

// New returns a Store holding the given users.
func New(users ...entity.User) *Store {
	return &Store{users: slices.Clone(users)}
}

// NewFromFile loads users from a JSON array of SeedUser. An empty path yields
// an empty store.
func NewFromFile(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return New(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memory: read users seed: %w", err)
	}

	return NewFromJSON(raw)
}

// NewFromJSON is NewFromFile for an in-memory document.
func NewFromJSON(raw []byte) (*Store, error) {
	var seed []SeedUser
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	if dup := lo.FindDuplicatesBy(seed, func(u SeedUser) string { return u.ID }); len(dup) > 0 {
		return nil, fmt.Errorf("%w: duplicate _id %q", ErrInvalidSeed, dup[0].ID)
	}

	users := lo.Map(seed, func(u SeedUser, _ int) entity.User {
		return entity.User{
			ID:         u.ID,
			Email:      u.Email,
			Username:   u.Username,
			Password:   u.Password,
			Require2FA: u.Require2FA,
		}
	})
	for _, u := range users {
		if u.ID == "" || u.Email == "" {
			return nil, fmt.Errorf("%w: _id and email are required", ErrInvalidSeed)
		}
	}

	return New(users...), nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := lo.Find(s.users, func(u entity.User) bool { return u.Email == email })
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := lo.Find(s.users, func(u entity.User) bool { return u.ID == id })
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &u, nil
}

func (s *Store) UpdateUserRequire2FA(ctx context.Context, id string, require2FA bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.users, func(u entity.User) bool { return u.ID == id })
	if i < 0 {
		return goerror.ErrNotFound
	}
	s.users[i].Require2FA = require2FA
	return nil
}

func (s *Store) GetSecretByUserID(ctx context.Context, userID string) (*entity.Secret, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sec, ok := lo.Find(s.secrets, func(sec entity.Secret) bool { return sec.UserID == userID })
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &sec, nil
}

func (s *Store) CreateSecret(ctx context.Context, secret entity.Secret) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if lo.ContainsBy(s.secrets, func(sec entity.Secret) bool { return sec.UserID == secret.UserID }) {
		return goerror.ErrConflict
	}
	s.secrets = append(s.secrets, secret)
	return nil
}

func (s *Store) GetSession(ctx context.Context, key entity.SessionKey) (*entity.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := lo.Find(s.sessions, func(sess entity.Session) bool { return sess.Key() == key })
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &sess, nil
}

// CreateSession appends a row. Duplicate keys are accepted; GetSession keeps
// returning the first one.
func (s *Store) CreateSession(ctx context.Context, session entity.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append(s.sessions, session)
	return nil
}

// MarkSessionVerified updates the row with session.ID, or the first row of its
// key when the id is unknown.
func (s *Store) MarkSessionVerified(ctx context.Context, session entity.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.sessions, func(sess entity.Session) bool { return sess.ID == session.ID })
	if i < 0 {
		i = slices.IndexFunc(s.sessions, func(sess entity.Session) bool { return sess.Key() == session.Key() })
	}
	if i < 0 {
		return goerror.ErrNotFound
	}
	s.sessions[i].Is2FAVerified = true
	return nil
}

func (s *Store) DeleteSessions(ctx context.Context, key entity.SessionKey) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.sessions)
	s.sessions = slices.DeleteFunc(s.sessions, func(sess entity.Session) bool { return sess.Key() == key })
	return int64(before - len(s.sessions)), nil
}
