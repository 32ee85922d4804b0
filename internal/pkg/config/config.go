// Package config reads service settings. Keys are dotted paths
// ("app.server.http.address") and every getter returns the zero value for a
// missing key, so callers fall back to their own defaults.
package config

import (
	"io"
	"time"
)

// Config is the read side used by the app wiring and modules.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint64(key string) uint64
	GetFloat64(key string) float64

	// GetSecond reads an integer number of seconds.
	GetSecond(key string) time.Duration
	// GetMillisecond reads an integer number of milliseconds.
	GetMillisecond(key string) time.Duration

	// GetArray accepts a YAML sequence or a comma separated string.
	GetArray(key string) []string
}
