// Package uid generates identifiers: numeric row ids (snowflake), sortable
// UUIDs for correlation ids and hex object ids for published events.
package uid

// NumberID generates unique numeric identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
