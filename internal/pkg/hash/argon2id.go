package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// Argon2id stores hashes in the PHC string format
// "$argon2id$v=19$m=<KiB>,t=<iter>,p=<threads>$<salt>$<key>". Verification
// reads the cost from the stored string, so raising the defaults does not
// invalidate existing hashes.
type Argon2id struct {
	params  argon2Params
	saltLen int
	keyLen  uint32
	pepper  string
	// sema bounds concurrent derivations; each one allocates params.memory KiB.
	sema chan struct{}
}

// NewArgon2id uses 32 MiB, 3 passes and 2 lanes, with at most 2 concurrent
// derivations.
func NewArgon2id(pepper string) *Argon2id {
	return &Argon2id{
		params:  argon2Params{memory: 32 * 1024, iterations: 3, parallelism: 2},
		saltLen: 16,
		keyLen:  32,
		pepper:  pepper,
		sema:    make(chan struct{}, 2),
	}
}

func (a *Argon2id) derive(plaintext string, salt []byte, p argon2Params, keyLen uint32) []byte {
	a.sema <- struct{}{}
	defer func() { <-a.sema }()

	return argon2.IDKey([]byte(plaintext+a.pepper), salt, p.iterations, p.memory, p.parallelism, keyLen)
}

// Hash returns the PHC encoded hash of plaintext with a random salt.
func (a *Argon2id) Hash(plaintext string) ([]byte, error) {
	salt := make([]byte, a.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("hash: argon2id salt: %w", err)
	}

	key := a.derive(plaintext, salt, a.params, a.keyLen)
	enc := base64.RawStdEncoding

	return fmt.Appendf(nil, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.params.memory, a.params.iterations, a.params.parallelism,
		enc.EncodeToString(salt), enc.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches a PHC encoded hash.
func (a *Argon2id) Verify(hashed, plaintext string) bool {
	p, salt, want, ok := parseArgon2id(hashed)
	if !ok || plaintext == "" {
		return false
	}

	got := a.derive(plaintext, salt, p, uint32(len(want))) //nolint:gosec // key length comes from a decoded hash
	return subtle.ConstantTimeCompare(want, got) == 1
}

func parseArgon2id(encoded string) (argon2Params, []byte, []byte, bool) {
	var p argon2Params

	rest, ok := strings.CutPrefix(encoded, "$argon2id$")
	if !ok {
		return p, nil, nil, false
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return p, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(fields[0], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}
	if _, err := fmt.Sscanf(fields[1], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return p, nil, nil, false
	}
	if p.memory == 0 || p.iterations == 0 || p.parallelism == 0 {
		return p, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[2])
	if err != nil {
		return p, nil, nil, false
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[3])
	if err != nil || len(key) == 0 {
		return p, nil, nil, false
	}

	return p, salt, key, true
}
