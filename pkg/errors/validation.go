package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field limits of a persisted graph record.
const (
	MaxTitleLength   = 200
	MaxStudyIDLength = 30
	MaxNodeIDLength  = 64
)

// ValidateTitle validates a graph title.
//
// Titles are free text shown to researchers, so only a few rules apply:
//   - No empty or whitespace-only titles
//   - Maximum length of 200 characters
//   - No control characters
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidInput, "title cannot be empty")
	}

	if utf8.RuneCountInString(title) > MaxTitleLength {
		return New(ErrCodeInvalidInput, "title too long (max %d characters)", MaxTitleLength)
	}

	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "title contains invalid control characters")
		}
	}

	return nil
}

// ValidateStudyID validates the reference to the study that owns a graph.
func ValidateStudyID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "study id cannot be empty")
	}

	if utf8.RuneCountInString(id) > MaxStudyIDLength {
		return New(ErrCodeInvalidInput, "study id too long (max %d characters)", MaxStudyIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "study id contains invalid characters")
		}
	}

	return nil
}

// ValidateNodeID validates a node identifier supplied by a caller.
//
// The text encoding strips whitespace before parsing, so identifiers with
// whitespace could never round-trip and are rejected here. Quotes and
// statement separators are rejected for the same reason.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if utf8.RuneCountInString(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid characters")
		}
	}

	if strings.ContainsAny(id, `";[]{}=,`) {
		return New(ErrCodeInvalidInput, "node id contains reserved characters: %q", id)
	}

	if strings.Contains(id, "->") {
		return New(ErrCodeInvalidInput, "node id cannot contain an edge operator: %q", id)
	}

	return nil
}
