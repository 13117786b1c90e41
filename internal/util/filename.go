package util

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeFilename converts an uploaded filename into a safe form for
// storage under the uploads directory. It strips any path components,
// transliterates accented characters to ASCII, replaces problematic
// characters, and guarantees a file extension.
func SanitizeFilename(filename string) string {
	// Remove path separators
	filename = filepath.Base(filename)

	// Decompose accents and strip combining marks (é -> e)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, filename); err == nil {
		filename = folded
	}

	replacer := strings.NewReplacer(
		" ", "-",
		"'", "",
		"\"", "",
		"<", "",
		">", "",
		"&", "",
		"#", "",
		"?", "",
		"%", "",
	)
	filename = replacer.Replace(filename)

	// Drop any remaining non-ASCII runes
	var sb strings.Builder
	for _, r := range filename {
		if r < 128 {
			sb.WriteRune(r)
		}
	}
	filename = sb.String()

	if filename == "" || filename == "." || filename == ".." {
		filename = "upload"
	}

	// Ensure we have an extension
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}

	return filename
}
