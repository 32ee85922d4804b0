package hash

import "crypto/subtle"

// Plain stores and compares secrets as-is.
//
// It exists for datastores that keep cleartext passwords. Comparison is
// constant-time so response timing does not leak the matching prefix.
type Plain struct{}

// NewPlain returns a Plain hasher.
func NewPlain() *Plain {
	return &Plain{}
}

// Hash returns plaintext unchanged.
func (*Plain) Hash(plaintext string) ([]byte, error) {
	return []byte(plaintext), nil
}

// Verify reports whether plaintext equals the stored value.
func (*Plain) Verify(stored, plaintext string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plaintext)) == 1
}
