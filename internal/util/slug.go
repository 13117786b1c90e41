// Package util provides general-purpose utility functions including
// URL slug generation and upload filename sanitization.
package util

import (
	"regexp"
	"strings"
)

var (
	// slugInvalidChars matches characters that are dropped outright
	// (everything except lowercase alphanumerics, whitespace and hyphens)
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]+`)
	// slugWhitespace matches runs of whitespace
	slugWhitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a category name to a URL-friendly slug.
// It lowercases the name, drops everything that is not a lowercase
// alphanumeric, whitespace or hyphen, collapses whitespace runs to a
// single hyphen, collapses hyphen runs, and trims hyphens from both ends.
func Slugify(s string) string {
	result := strings.ToLower(s)

	// Drop invalid characters before whitespace handling so that
	// "Casamentos & Cia" collapses to "casamentos-cia"
	result = slugInvalidChars.ReplaceAllString(result, "")

	// Collapse whitespace runs to a single hyphen
	result = slugWhitespace.ReplaceAllString(strings.TrimSpace(result), "-")

	// Collapse consecutive hyphens
	result = multipleHyphens.ReplaceAllString(result, "-")

	// Trim hyphens from start and end
	result = strings.Trim(result, "-")

	return result
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	// Only lowercase letters, numbers, and hyphens
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	// No leading or trailing hyphen
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	// No consecutive hyphens
	if strings.Contains(s, "--") {
		return false
	}

	return true
}
