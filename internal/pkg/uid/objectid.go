package uid

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/atomic"
)

// ErrNoNodeIdentity is returned when neither /etc/machine-id nor the hostname
// can identify this process's host.
var ErrNoNodeIdentity = errors.New("uid: cannot determine node identity")

// ObjectIDGenerator produces 12-byte ObjectIDs rendered as 24 hex chars:
// 4 bytes unix seconds, 5 bytes derived from host and pid, 3 bytes counter.
// IDs from one generator sort by creation second.
type ObjectIDGenerator struct {
	process [5]byte
	counter *atomic.Uint32
	now     func() time.Time
}

// NewObjectIDGenerator derives the process part from the host identity.
func NewObjectIDGenerator() (*ObjectIDGenerator, error) {
	host, err := nodeIdentity()
	if err != nil {
		return nil, err
	}

	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}

	g := &ObjectIDGenerator{
		counter: atomic.NewUint32(binary.BigEndian.Uint32(seed[:])),
		now:     time.Now,
	}
	sum := sha256.Sum256([]byte(host + "/" + strconv.Itoa(os.Getpid())))
	copy(g.process[:], sum[:5])

	return g, nil
}

func nodeIdentity() (string, error) {
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	}
	if h, err := os.Hostname(); err == nil {
		if h = strings.TrimSpace(h); h != "" {
			return h, nil
		}
	}
	return "", ErrNoNodeIdentity
}

// Generate returns the next ObjectID.
func (g *ObjectIDGenerator) Generate() string {
	var raw [12]byte

	binary.BigEndian.PutUint32(raw[0:4], uint32(g.now().Unix())) //nolint:gosec // valid until 2106
	copy(raw[4:9], g.process[:])

	c := g.counter.Inc()
	raw[9] = byte(c >> 16)
	raw[10] = byte(c >> 8)
	raw[11] = byte(c)

	return hex.EncodeToString(raw[:])
}
