package utils

import (
	"errors"
	"regexp"
	"strings"
)

var sortFieldPattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

// ValidateSortField rejects sort fields that are not plain column
// references. Whole-word SQL keywords are refused as well.
func ValidateSortField(field string) error {
	if field == "" {
		return errors.New("sort field cannot be empty")
	}

	if !sortFieldPattern.MatchString(field) {
		return errors.New("invalid sort field format")
	}

	sqlKeywords := []string{
		"SELECT", "INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
		"EXEC", "EXECUTE", "UNION", "SCRIPT", "DECLARE", "CAST", "CONVERT",
		"FROM", "WHERE", "ORDER", "BY", "GROUP", "HAVING", "JOIN", "INNER",
		"OUTER", "LEFT", "RIGHT", "ON", "AS", "AND", "OR", "NOT", "IN",
	}

	upperField := strings.ToUpper(field)
	for _, keyword := range sqlKeywords {
		pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
		if pattern.MatchString(upperField) {
			return errors.New("sort field contains SQL keyword")
		}
	}

	return nil
}

// ValidateSortOrder accepts only ASC or DESC.
func ValidateSortOrder(order string) error {
	upperOrder := strings.ToUpper(strings.TrimSpace(order))
	if upperOrder != "ASC" && upperOrder != "DESC" {
		return errors.New("sort order must be ASC or DESC")
	}
	return nil
}

var sortFieldCleaner = regexp.MustCompile(`[^a-zA-Z0-9_.]`)

// SanitizeSortField strips everything but column reference characters.
func SanitizeSortField(field string) string {
	return sortFieldCleaner.ReplaceAllString(field, "")
}

// SanitizeSortOrder normalizes the sort direction, defaulting to DESC.
func SanitizeSortOrder(order string) string {
	upperOrder := strings.ToUpper(strings.TrimSpace(order))
	if upperOrder == "ASC" || upperOrder == "DESC" {
		return upperOrder
	}
	return "DESC"
}
