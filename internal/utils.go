package internal

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Version is the coltrans release version
const Version = "0.3.0"

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// DeriveOutputPath returns the default output path for a translated
// dataset: <dir>/<name>_<lang><ext>
func DeriveOutputPath(input, lang string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + "_" + SanitizeFilename(lang) + ext
}

// isAlphaNumeric checks if a rune is a letter or digit in any script
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
