package mfa

import (
	"encoding/base64"
	"fmt"
)

// Encryptor defines the interface for encrypting/decrypting.
type Encryptor interface {
	// Encrypt returns ciphertext for the given plaintext and scope.
	Encrypt(plaintext []byte, scope Scope) (ciphertext []byte, err error)
	// Decrypt returns plaintext for the given ciphertext and scope.
	Decrypt(ciphertext []byte, scope Scope) (plaintext []byte, err error)
}

// KeyProvider provides raw AES keys.
// For AES-256-GCM, keys must be 32 bytes.
type KeyProvider interface {
	// Key returns the raw AES key to use for this scope.
	Key(scope Scope) ([]byte, error)
}

// SealString encrypts a text value and returns it base64 encoded, ready for a
// text column or a JSON document.
func SealString(enc Encryptor, value string, scope Scope) (string, error) {
	ct, err := enc.Encrypt([]byte(value), scope)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// OpenString reverses SealString.
func OpenString(enc Encryptor, sealed string, scope Scope) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("mfacrypto: sealed value is not base64: %w", ErrDecryptFailed)
	}

	pt, err := enc.Decrypt(ct, scope)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// Plaintext is an Encryptor that stores values unchanged.
// It is selected when no mfa.secret is configured.
type Plaintext struct{}

// Encrypt returns a copy of plaintext.
func (Plaintext) Encrypt(plaintext []byte, _ Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrPlaintextEmpty
	}
	return append([]byte(nil), plaintext...), nil
}

// Decrypt returns a copy of ciphertext.
func (Plaintext) Decrypt(ciphertext []byte, _ Scope) ([]byte, error) {
	return append([]byte(nil), ciphertext...), nil
}
