package validate

import (
	"fmt"
	"strings"
)

// Error reports a rejected input value. Callers branch on it with
// errors.As to distinguish bad input from backend failures.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Username length bounds
const (
	UsernameMinLen = 3
	UsernameMaxLen = 50
)

// Username checks the 3-50 char alphanumeric/underscore rule.
// Leading/trailing whitespace is trimmed before checking.
func Username(raw string) error {
	username := strings.TrimSpace(raw)
	if username == "" {
		return &Error{Field: "username", Reason: "must not be empty"}
	}
	if len(username) < UsernameMinLen {
		return &Error{Field: "username", Reason: fmt.Sprintf("must be at least %d characters", UsernameMinLen)}
	}
	if len(username) > UsernameMaxLen {
		return &Error{Field: "username", Reason: fmt.Sprintf("must be at most %d characters", UsernameMaxLen)}
	}
	for _, r := range username {
		if !isUsernameRune(r) {
			return &Error{Field: "username", Reason: "may only contain letters, digits and underscore"}
		}
	}
	return nil
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_':
		return true
	}
	return false
}

// FreeText checks that text is non-blank and within [1, maxLen] runes.
func FreeText(field, text string, maxLen int) error {
	if strings.TrimSpace(text) == "" {
		return &Error{Field: field, Reason: "must not be blank"}
	}
	if len([]rune(text)) > maxLen {
		return &Error{Field: field, Reason: fmt.Sprintf("must be at most %d characters", maxLen)}
	}
	return nil
}

// IntRange checks that n lies within [min, max] inclusive.
func IntRange(field string, n, min, max int) error {
	if n < min || n > max {
		return &Error{Field: field, Reason: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return nil
}

// NonNegative checks that n is zero or positive.
func NonNegative(field string, n int) error {
	if n < 0 {
		return &Error{Field: field, Reason: "must not be negative"}
	}
	return nil
}
