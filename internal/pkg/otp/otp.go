package otp

import (
	"encoding/base32"
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	defaultPeriod = 30
	secretSize    = 20
)

// ErrInvalidSecret is returned when a stored secret is not valid base32.
var ErrInvalidSecret = errors.New("otp: secret is not valid base32")

// OTP issues and checks time-based one-time codes.
type OTP interface {
	// GenerateSecret creates a new random base32 secret.
	GenerateSecret() (string, error)
	// KeyURI builds the otpauth:// provisioning URI for an account and an
	// existing secret.
	KeyURI(accountName, secret string) (string, error)
	Validate(code, secret string, at time.Time) bool
	GenerateCode(secret string, at time.Time) (string, error)
}

// TOTP is the RFC 6238 implementation on top of pquerna/otp. Codes use
// SHA1, which is what authenticator apps assume when scanning a key URI.
type TOTP struct {
	issuer string
	opts   totp.ValidateOpts
}

// NewTOTP returns a TOTP for issuer. A zero period means 30 seconds, a zero
// skew means one step either side, and digits other than 6 or 8 mean 6.
func NewTOTP(issuer string, period, skew uint, digits otp.Digits) *TOTP {
	if period == 0 {
		period = defaultPeriod
	}
	if skew == 0 {
		skew = 1
	}
	if digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	return &TOTP{
		issuer: issuer,
		opts: totp.ValidateOpts{
			Period:    period,
			Skew:      skew,
			Digits:    digits,
			Algorithm: otp.AlgorithmSHA1,
		},
	}
}

// GenerateSecret returns a fresh 160-bit secret, base32 without padding.
func (o *TOTP) GenerateSecret() (string, error) {
	key, err := o.key("secret", nil)
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// KeyURI is deterministic for a given account and secret.
func (o *TOTP) KeyURI(accountName, secret string) (string, error) {
	raw, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	key, err := o.key(accountName, raw)
	if err != nil {
		return "", err
	}
	return key.URL(), nil
}

// Validate trims surrounding whitespace from code and accepts any step
// within the configured skew of at.
func (o *TOTP) Validate(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, at, o.opts)
	return ok && err == nil
}

func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, o.opts)
}

func (o *TOTP) key(accountName string, secret []byte) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      o.issuer,
		AccountName: accountName,
		Period:      o.opts.Period,
		SecretSize:  secretSize,
		Secret:      secret,
		Digits:      o.opts.Digits,
		Algorithm:   o.opts.Algorithm,
	})
}

// decodeSecret accepts lower case and padded input, as users sometimes paste
// secrets by hand.
func decodeSecret(secret string) ([]byte, error) {
	s := strings.TrimRight(strings.ToUpper(strings.TrimSpace(secret)), "=")
	if s == "" {
		return nil, ErrInvalidSecret
	}

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
	if err != nil {
		return nil, ErrInvalidSecret
	}
	return raw, nil
}
