package security

import (
	"path/filepath"
	"strings"
)

// RiskyExtensions are executable attachment types that should never be opened unreviewed
var RiskyExtensions = []string{".exe", ".scr", ".bat", ".com", ".pif", ".cmd"}

// IsRisky reports whether the filename carries an executable extension
func IsRisky(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, risky := range RiskyExtensions {
		if ext == risky {
			return true
		}
	}
	return false
}

// RiskyFiles returns the names from filenames that carry an executable extension
func RiskyFiles(filenames []string) []string {
	var out []string
	for _, name := range filenames {
		if IsRisky(name) {
			out = append(out, name)
		}
	}
	return out
}
