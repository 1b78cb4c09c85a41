package errors

import (
	"strings"
	"unicode"
)

// ValidateElementID validates a node or container identifier.
// IDs end up in cache keys, DOT documents, and URL paths, so the rules are
// intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidElement, "element ID cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidElement, "element ID too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidElement, "element ID contains control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidElement, "element ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateStyleTag validates a node or edge style tag.
// Style tags index into style lookup tables; unknown tags fall back to a
// default style at render time, but malformed tags are rejected up front.
func ValidateStyleTag(tag string) error {
	if tag == "" {
		return nil // empty tag means "use default"
	}

	if len(tag) > 64 {
		return New(ErrCodeInvalidStyle, "style tag too long (max 64 characters)")
	}

	for _, r := range tag {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return New(ErrCodeInvalidStyle, "style tag contains invalid character: %q", r)
		}
	}

	return nil
}
