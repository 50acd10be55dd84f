package validate

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// URL validation errors
var (
	ErrInvalidURL       = errors.New("invalid URL format")
	ErrDisallowedScheme = errors.New("URL scheme not allowed")
)

// URLConstraints defines validation constraints for URLs.
type URLConstraints struct {
	AllowedSchemes []string
	MaxLength      int // 0 = no limit
}

// PublicWebURLConstraints allows HTTP and HTTPS web URLs.
var PublicWebURLConstraints = URLConstraints{
	AllowedSchemes: []string{"https", "http"},
	MaxLength:      2048,
}

// URL validates a URL against the given constraints and returns the
// trimmed URL string.
func URL(urlStr string, constraints URLConstraints) (string, error) {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return "", ErrEmpty
	}
	if constraints.MaxLength > 0 && len(urlStr) > constraints.MaxLength {
		return "", fmt.Errorf("%w: URL exceeds %d characters", ErrStringTooLong, constraints.MaxLength)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if len(constraints.AllowedSchemes) > 0 {
		allowed := false
		for _, scheme := range constraints.AllowedSchemes {
			if parsed.Scheme == scheme {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", fmt.Errorf("%w: got %q, allowed: %v", ErrDisallowedScheme, parsed.Scheme, constraints.AllowedSchemes)
		}
	}

	if parsed.Hostname() == "" {
		return "", fmt.Errorf("%w: missing hostname", ErrInvalidURL)
	}

	return urlStr, nil
}

// ImageURL validates a property photo URL.
func ImageURL(urlStr string) (string, error) {
	return URL(urlStr, PublicWebURLConstraints)
}
