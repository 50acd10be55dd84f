// Package validate provides input validation for the tour planner API.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length (0 = no minimum)
	MaxLength      int            // Maximum length (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex for the whole string
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
}

// String validates a string against the given constraints. Returns the
// validated (and optionally trimmed) string.
func String(s string, constraints StringConstraints) (string, error) {
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	// Character count, not byte count.
	length := utf8.RuneCountInString(s)

	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}
	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}
	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", fmt.Errorf("%w: does not match required pattern", ErrInvalidCharacters)
	}

	return s, nil
}

// Address validates a property street address: required, at most 200
// characters.
func Address(address string) (string, error) {
	return String(address, StringConstraints{
		MinLength:  1,
		MaxLength:  200,
		AllowEmpty: false,
		TrimSpace:  true,
	})
}

// PersonName validates an agent or client name: optional, at most 100
// characters.
func PersonName(name string) (string, error) {
	return String(name, StringConstraints{
		MaxLength:  100,
		AllowEmpty: true,
		TrimSpace:  true,
	})
}

// Description validates a property description: optional, at most 5000
// characters.
func Description(desc string) (string, error) {
	return String(desc, StringConstraints{
		MaxLength:  5000,
		AllowEmpty: true,
		TrimSpace:  true,
	})
}

var tourDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// TourDate validates a tour date in YYYY-MM-DD form. The date is treated
// as an opaque label, so only the shape is checked.
func TourDate(date string) (string, error) {
	return String(date, StringConstraints{
		AllowedPattern: tourDatePattern,
		AllowEmpty:     false,
		TrimSpace:      true,
	})
}
