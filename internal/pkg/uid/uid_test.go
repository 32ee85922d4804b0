package uid

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_Generate(t *testing.T) {
	gen, err := NewSnowflakeWithNode(1)
	require.NoError(t, err)

	seen := make(map[int64]struct{}, 1000)
	prev := int64(0)
	for range 1000 {
		id := gen.Generate()
		assert.Greater(t, id, prev)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
		prev = id
	}

	_, err = NewSnowflakeWithNode(2048)
	assert.Error(t, err)
}

func TestNewSnowflake(t *testing.T) {
	gen, err := NewSnowflake()
	require.NoError(t, err)
	assert.NotZero(t, gen.Generate())
}

func TestUUID_Generate(t *testing.T) {
	var gen StringID = NewUUID()

	id, err := uuid.Parse(gen.Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.NotEqual(t, gen.Generate(), gen.Generate())
}

func TestObjectIDGenerator_Generate(t *testing.T) {
	gen, err := NewObjectIDGenerator()
	require.NoError(t, err)

	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)
	// Same second and process: only the counter differs.
	assert.Equal(t, a[:18], b[:18])
}

func TestObjectIDGenerator_TimestampPrefix(t *testing.T) {
	gen, err := NewObjectIDGenerator()
	require.NoError(t, err)
	gen.now = func() time.Time { return time.Unix(0x5f5e1000, 0) }

	assert.Equal(t, "5f5e1000", gen.Generate()[:8])
}
