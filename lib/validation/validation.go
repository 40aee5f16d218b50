package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalidInput marks caller input rejected before any storage or network access.
var ErrInvalidInput = errors.New("invalid input")

const (
	maxTitleLength    = 200
	maxUsernameLength = 100
)

// unsafeFilenameChars matches anything not allowed in a generated page name.
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ValidateTitle checks a free-text movie title and returns it trimmed.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, maxTitleLength)
	}
	return title, nil
}

// ValidateUsername checks a profile name and returns it trimmed. Names are
// case-sensitive, so no case folding happens here.
func ValidateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: username cannot be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxUsernameLength {
		return "", fmt.Errorf("%w: username must be at most %d characters", ErrInvalidInput, maxUsernameLength)
	}
	return name, nil
}

// SafeFilename maps a username onto a file name that stays inside its directory.
func SafeFilename(name string) string {
	safe := strings.Trim(unsafeFilenameChars.ReplaceAllString(name, "_"), ".")
	if safe == "" {
		return "user"
	}
	return safe
}
