package entity

import "time"

// User is created and deleted outside this service. Only Require2FA is ever
// written here, and only from false to true.
type User struct {
	ID         string
	Email      string
	Username   string
	Password   string
	Require2FA bool
}

// Secret is the TOTP shared secret of a user. Value is the plaintext base32
// seed; stores encrypt it at rest.
type Secret struct {
	ID     int64
	UserID string
	Value  string
}

// Profile is a user merged with the state of one of its sessions.
// Is2FAVerified and LastLogin are nil when no session row exists.
type Profile struct {
	ID            string
	Email         string
	Username      string
	Require2FA    bool
	Is2FAVerified *bool
	LastLogin     *time.Time
}

// NewProfile projects u without its password and merges the session state.
func NewProfile(u User, s *Session) Profile {
	p := Profile{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Require2FA: u.Require2FA,
	}

	if s != nil {
		verified := s.Is2FAVerified
		lastLogin := s.LastLogin
		p.Is2FAVerified = &verified
		p.LastLogin = &lastLogin
	}

	return p
}

// State returns the session state the profile was built from.
func (p Profile) State() SessionState {
	switch {
	case p.Is2FAVerified == nil:
		return SessionUnauthenticated
	case *p.Is2FAVerified:
		return SessionVerified
	default:
		return SessionPendingVerification
	}
}
