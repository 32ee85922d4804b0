package entity

import (
	"errors"
	"time"
)

// ErrSessionMismatch is returned when a transition is applied to a session
// that belongs to another key.
var ErrSessionMismatch = errors.New("twofa: session key mismatch")

// SessionKey identifies a session. DeviceID is opaque.
type SessionKey struct {
	UserID   string
	DeviceID string
}

// Session tracks the 2FA state of one user on one device.
type Session struct {
	ID            int64
	UserID        string
	DeviceID      string
	Is2FAVerified bool
	LastLogin     time.Time
}

// Key returns the session key.
func (s Session) Key() SessionKey {
	return SessionKey{UserID: s.UserID, DeviceID: s.DeviceID}
}

// SessionState is the 2FA state of a (user, device) pair.
//
//	Unauthenticated --Login--> PendingVerification --OTP ok--> Verified
//	PendingVerification|Verified --Logout--> Unauthenticated
type SessionState int8

const (
	// SessionUnauthenticated means no session row exists.
	SessionUnauthenticated SessionState = iota
	// SessionPendingVerification means the password was accepted but no OTP yet.
	SessionPendingVerification
	// SessionVerified means an OTP was accepted on this device.
	SessionVerified
)

func (s SessionState) String() string {
	switch s {
	case SessionPendingVerification:
		return "PendingVerification"
	case SessionVerified:
		return "Verified"
	default:
		return "Unauthenticated"
	}
}

// StateOf returns the state represented by a stored row, nil meaning no row.
func StateOf(s *Session) SessionState {
	if s == nil {
		return SessionUnauthenticated
	}
	if s.Is2FAVerified {
		return SessionVerified
	}
	return SessionPendingVerification
}

// NewPendingSession builds the row written by a login on a device that has
// no session yet.
func NewPendingSession(id int64, key SessionKey, now time.Time) Session {
	return Session{
		ID:            id,
		UserID:        key.UserID,
		DeviceID:      key.DeviceID,
		Is2FAVerified: false,
		LastLogin:     now,
	}
}

// MarkVerified moves the session to Verified. It reports whether the row
// changed; a verified session stays verified.
func (s *Session) MarkVerified() bool {
	if s.Is2FAVerified {
		return false
	}
	s.Is2FAVerified = true
	return true
}

// LoginTransition decides what a successful password check does with the
// session found for key. An existing row is kept as is; otherwise a pending
// row must be inserted.
func LoginTransition(existing *Session, id int64, key SessionKey, now time.Time) (session Session, insert bool, err error) {
	if existing == nil {
		return NewPendingSession(id, key, now), true, nil
	}
	if existing.Key() != key {
		return Session{}, false, ErrSessionMismatch
	}
	return *existing, false, nil
}

// VerifyTransition applies an accepted OTP to the session found for key.
// A missing row yields nil: nothing is created. update reports whether the
// stored row must be written.
func VerifyTransition(existing *Session, key SessionKey) (session *Session, update bool, err error) {
	if existing == nil {
		return nil, false, nil
	}
	if existing.Key() != key {
		return nil, false, ErrSessionMismatch
	}

	next := *existing
	return &next, next.MarkVerified(), nil
}

// EnableRequirement applies a completed setup to the user. It reports whether
// Require2FA flipped.
func EnableRequirement(u *User) bool {
	if u.Require2FA {
		return false
	}
	u.Require2FA = true
	return true
}
