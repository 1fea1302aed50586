package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxFilenameBytes = 255

var (
	illegalFilenameChars = regexp.MustCompile(`[/?<>\\:*|"]`)
	controlFilenameChars = regexp.MustCompile(`[\x00-\x1f\x80-\x9f]`)
	reservedFilename     = regexp.MustCompile(`^\.+$`)
	windowsReservedName  = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	windowsTrailingChars = regexp.MustCompile(`[. ]+$`)
)

// SanitizeFilename turns an arbitrary title into a name usable as a single
// path element on every major platform. Characters that are illegal in file
// names are removed, reserved names yield "untitled".
func SanitizeFilename(name string) string {
	sanitized := illegalFilenameChars.ReplaceAllString(name, "")
	sanitized = controlFilenameChars.ReplaceAllString(sanitized, "")
	sanitized = reservedFilename.ReplaceAllString(sanitized, "")
	sanitized = windowsReservedName.ReplaceAllString(sanitized, "")
	sanitized = windowsTrailingChars.ReplaceAllString(sanitized, "")
	sanitized = truncateUTF8(sanitized, maxFilenameBytes)

	if strings.TrimSpace(sanitized) == "" {
		return "untitled"
	}
	return sanitized
}

func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
