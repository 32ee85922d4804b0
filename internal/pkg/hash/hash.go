package hash

import (
	"errors"
	"strings"
)

// Supported drivers for NewFromDriver.
const (
	DriverPlain    = "plain"
	DriverBcrypt   = "bcrypt"
	DriverArgon2id = "argon2id"
	DriverHMAC     = "hmac"
)

// ErrUnknownDriver is returned when the configured hash driver is not supported.
var ErrUnknownDriver = errors.New("hash: unknown driver")

// Hash hashes secrets and verifies plaintext against a stored value.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}

// Options carries per-driver settings.
type Options struct {
	BcryptCost int
	Pepper     string
	HMACSecret string
}

// NewFromDriver builds a Hash for the configured driver name.
// An empty driver selects DriverPlain.
func NewFromDriver(driver string, opts Options) (Hash, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverPlain:
		return NewPlain(), nil
	case DriverBcrypt:
		return NewBcrypt(opts.BcryptCost, opts.Pepper), nil
	case DriverArgon2id:
		return NewArgon2id(opts.Pepper), nil
	case DriverHMAC:
		if opts.HMACSecret == "" {
			return nil, errors.New("hash: hmac driver requires a secret")
		}
		return NewHMACSHA256(opts.HMACSecret), nil
	default:
		return nil, ErrUnknownDriver
	}
}
