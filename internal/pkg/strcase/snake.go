// Package strcase converts Go identifiers to the snake_case keys used in JSON
// payloads.
package strcase

import (
	"strings"
	"unicode"
)

// Words splits a Go identifier at case and letter/digit boundaries. Acronyms
// stay whole and a digit run keeps the capitals that follow it, so
// "Require2FA" splits into "Require", "2FA".
func Words(s string) []string {
	runes := []rune(s)
	var words []string
	start := 0

	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

		split := false
		switch {
		case unicode.IsUpper(cur) && unicode.IsLower(prev):
			split = true
		case unicode.IsUpper(cur) && unicode.IsUpper(prev) && nextLower:
			split = true
		case unicode.IsDigit(cur) && unicode.IsLetter(prev):
			split = true
		case unicode.IsUpper(cur) && unicode.IsDigit(prev) && nextLower:
			split = true
		}

		if split {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}

	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return words
}

// ToLowerSnake joins Words with underscores in lower case.
func ToLowerSnake(s string) string {
	return strings.ToLower(strings.Join(Words(s), "_"))
}
