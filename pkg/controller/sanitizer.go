package controller

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/ragchat/pkg/domain"
)

// DefaultMaxInputSize is 4KB (conservative default).
const DefaultMaxInputSize = 4096

// SanitizeQuery trims the query, enforces the size limit, validates UTF-8 and
// strips dangerous control characters. An empty result is reported as
// domain.ErrEmptyQuery.
func SanitizeQuery(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return "", domain.ErrEmptyQuery
	}

	// We explicitly reject rather than truncate: the user must see what was sent.
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", domain.ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", domain.ErrInvalidUTF8
	}

	// Fast path: if no control chars, return as is.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", domain.ErrEmptyQuery
	}
	return out, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
