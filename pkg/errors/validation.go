package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateMovieID validates a movie identifier used as a store key.
// It rejects names that could be used for path traversal when the
// file-backed store maps identifiers to paths.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No path traversal sequences (.., //)
//   - No path separators
//   - Maximum length of 256 characters
func ValidateMovieID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "movie id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "movie id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "movie id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "movie id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateBranchLength validates a branch length value from movie input.
// Branch lengths must be finite and non-negative.
func ValidateBranchLength(length float64) error {
	if math.IsNaN(length) || math.IsInf(length, 0) {
		return New(ErrCodeInvalidTree, "branch length must be finite, got %v", length)
	}
	if length < 0 {
		return New(ErrCodeInvalidTree, "branch length must be non-negative, got %v", length)
	}
	return nil
}

// ValidateProgress validates a playback progress value.
// Progress must be a finite value; callers clamp it to [0, 1].
func ValidateProgress(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return New(ErrCodeInvalidProgress, "progress must be finite, got %v", p)
	}
	return nil
}

// MissingFields builds a validation error naming every missing required
// field of the movie input. Returns nil if the list is empty.
func MissingFields(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return New(ErrCodeMissingField, "movie data is missing required fields: %s", strings.Join(fields, ", "))
}
