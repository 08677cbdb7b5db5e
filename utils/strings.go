package utils

import (
	"regexp"
	"strings"
)

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// NormalizeName converts a name to lowercase for comparison
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ResolveName returns the roster spelling of name, matching case-insensitively
func ResolveName(roster []string, name string) (string, bool) {
	key := NormalizeName(name)
	if key == "" {
		return "", false
	}
	for _, member := range roster {
		if NormalizeName(member) == key {
			return member, true
		}
	}
	return "", false
}

// SplitList splits a comma separated list, dropping blank entries
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// CleanFileName removes invalid characters from filename
func CleanFileName(filename string) string {
	cleaned := invalidFileChars.ReplaceAllString(filename, "_")
	cleaned = strings.TrimSpace(cleaned)
	return whitespaceRun.ReplaceAllString(cleaned, "_")
}
