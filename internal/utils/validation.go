package utils

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// SanitizeString escapes HTML and strips control characters other than
// newline and tab.
func SanitizeString(input string) string {
	sanitized := html.EscapeString(input)

	var result strings.Builder
	for _, r := range sanitized {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}

var resourceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateResourceID validates a path identifier: non-empty, URL-safe
// characters only, at most 64 bytes.
func ValidateResourceID(id string) error {
	if id == "" {
		return ErrEmptyID
	}

	if !resourceIDPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}

	if len(id) > 64 {
		return ErrIDTooLong
	}

	return nil
}

// ValidateCustomerName validates a customer name: non-empty after trimming,
// at most 255 bytes and free of injection markers.
func ValidateCustomerName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}

	if len(trimmed) > 255 {
		return ErrNameTooLong
	}

	if containsDangerousChars(trimmed) {
		return ErrDangerousChars
	}

	return nil
}

func containsDangerousChars(s string) bool {
	dangerousPatterns := []string{
		"<script",
		"</script>",
		"javascript:",
		"onerror=",
		"onload=",
		"';",
		"'; --",
		"DROP TABLE",
		"DELETE FROM",
		"INSERT INTO",
		"UPDATE SET",
		"UNION SELECT",
		"<iframe",
		"<img",
		"<svg",
	}

	lower := strings.ToLower(s)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}

	return false
}

// TrimAndValidate trims, bounds-checks and sanitizes a string.
func TrimAndValidate(s string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(s)

	if trimmed == "" {
		return "", ErrEmptyString
	}

	if maxLen > 0 && len(trimmed) > maxLen {
		return "", ErrStringTooLong
	}

	return SanitizeString(trimmed), nil
}

var (
	ErrEmptyName       = &ValidationError{Code: "EMPTY_NAME", Message: "name cannot be empty"}
	ErrNameTooLong     = &ValidationError{Code: "NAME_TOO_LONG", Message: "name exceeds maximum length"}
	ErrDangerousChars  = &ValidationError{Code: "DANGEROUS_CHARS", Message: "name contains dangerous characters"}
	ErrEmptyID         = &ValidationError{Code: "EMPTY_ID", Message: "id cannot be empty"}
	ErrInvalidIDFormat = &ValidationError{Code: "INVALID_ID_FORMAT", Message: "id contains invalid characters"}
	ErrIDTooLong       = &ValidationError{Code: "ID_TOO_LONG", Message: "id exceeds maximum length"}
	ErrEmptyString     = &ValidationError{Code: "EMPTY_STRING", Message: "string cannot be empty"}
	ErrStringTooLong   = &ValidationError{Code: "STRING_TOO_LONG", Message: "string exceeds maximum length"}
)

// ValidationError is a structured input validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
