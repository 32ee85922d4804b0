package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 stores the hex HMAC-SHA256 of the password keyed by a server
// secret. It is fast, so it only suits datastores that already hold such
// digests.
type HMACSHA256 struct {
	secret []byte
}

func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

func (s *HMACSHA256) sum(plaintext string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(plaintext))
	return mac.Sum(nil)
}

// Hash returns the hex encoded digest.
func (s *HMACSHA256) Hash(plaintext string) ([]byte, error) {
	return hex.AppendEncode(nil, s.sum(plaintext)), nil
}

// Verify decodes the stored digest and compares in constant time; a value
// that is not hex never matches.
func (s *HMACSHA256) Verify(hashed, plaintext string) bool {
	want, err := hex.DecodeString(hashed)
	if err != nil || len(want) != sha256.Size {
		return false
	}
	return hmac.Equal(want, s.sum(plaintext))
}
