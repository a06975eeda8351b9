package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MaxDimension bounds frame width and height accepted from users and HTTP
// query strings.
const MaxDimension = 1 << 15

// ValidatePath validates a filesystem path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateDimensions validates a frame size. Both sides must be positive and
// no larger than MaxDimension.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidDimensions, "frame must have positive size, got %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidDimensions, "frame too large (max %d per side), got %dx%d", MaxDimension, width, height)
	}
	return nil
}

// ValidatePattern validates an exclusion pattern. A trailing slash marks a
// directory pattern; the rest must be a well-formed glob.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return New(ErrCodeInvalidInput, "exclusion pattern cannot be empty")
	}
	glob := strings.TrimSuffix(pattern, "/")
	if _, err := filepath.Match(glob, ""); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "malformed exclusion pattern %q", pattern)
	}
	return nil
}
