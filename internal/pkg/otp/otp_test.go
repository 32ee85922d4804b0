package otp

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOTP_GenerateSecretAndKeyURI(t *testing.T) {
	o := NewTOTP("2FA", 0, 0, 0)

	secret, err := o.GenerateSecret()
	require.NoError(t, err)
	assert.Len(t, secret, 32)

	uri, err := o.KeyURI("alice", secret)
	require.NoError(t, err)

	u, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "otpauth", u.Scheme)
	assert.Equal(t, "totp", u.Host)
	assert.Equal(t, "/2FA:alice", u.Path)
	assert.Equal(t, secret, u.Query().Get("secret"))
	assert.Equal(t, "2FA", u.Query().Get("issuer"))

	again, err := o.KeyURI("alice", secret)
	require.NoError(t, err)
	assert.Equal(t, uri, again)
}

func TestTOTP_KeyURI_InvalidSecret(t *testing.T) {
	o := NewTOTP("2FA", 30, 1, otp.DigitsSix)

	_, err := o.KeyURI("alice", "")
	assert.ErrorIs(t, err, ErrInvalidSecret)

	_, err = o.KeyURI("alice", "not base32!")
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestTOTP_Validate(t *testing.T) {
	o := NewTOTP("2FA", 30, 1, otp.DigitsSix)
	secret, err := o.GenerateSecret()
	require.NoError(t, err)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	code, err := o.GenerateCode(secret, at)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	assert.True(t, o.Validate(code, secret, at))
	assert.True(t, o.Validate(" "+code+" ", secret, at))
	assert.True(t, o.Validate(code, secret, at.Add(30*time.Second)))
	assert.False(t, o.Validate(code, secret, at.Add(5*time.Minute)))
	assert.False(t, o.Validate("", secret, at))
	assert.False(t, o.Validate("12345", secret, at))
}

func TestNewTOTP_Defaults(t *testing.T) {
	o := NewTOTP("x", 0, 0, otp.Digits(7))
	assert.Equal(t, uint(30), o.opts.Period)
	assert.Equal(t, uint(1), o.opts.Skew)
	assert.Equal(t, otp.DigitsSix, o.opts.Digits)
	assert.Equal(t, otp.AlgorithmSHA1, o.opts.Algorithm)
}

func TestTOTP_KeyURI_AcceptsLowerCaseAndPadding(t *testing.T) {
	o := NewTOTP("2FA", 30, 1, otp.DigitsSix)
	secret, err := o.GenerateSecret()
	require.NoError(t, err)

	want, err := o.KeyURI("bob", secret)
	require.NoError(t, err)

	got, err := o.KeyURI("bob", strings.ToLower(secret)+"====")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTOTP_EightDigits(t *testing.T) {
	o := NewTOTP("2FA", 30, 1, otp.DigitsEight)
	secret, err := o.GenerateSecret()
	require.NoError(t, err)

	code, err := o.GenerateCode(secret, time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.Len(t, code, 8)
}
