// Package validator checks request structs against their `validate` tags and
// reports failures as a map keyed by snake_case field name. The custom
// "notblank" rule rejects strings made only of whitespace.
package validator
