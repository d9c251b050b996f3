package drive

import (
	"fmt"
	"regexp"
	"strings"
)

// structuredQueryPatterns recognize Drive query syntax. A query matching
// any of these is passed to the API verbatim; anything else is treated as
// free text.
var structuredQueryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(name|fullText|mimeType|description|properties|appProperties)\s*(contains|=|!=)`),
	regexp.MustCompile(`(?i)\b(modifiedTime|createdTime|viewedByMeTime|sharedWithMeTime)\s*(>|>=|<|<=|=)`),
	regexp.MustCompile(`(?i)'[^']*'\s+in\s+(parents|owners|writers|readers)`),
	regexp.MustCompile(`(?i)\btrashed\s*=\s*(true|false)`),
	regexp.MustCompile(`(?i)\bstarred\s*=\s*(true|false)`),
	regexp.MustCompile(`(?i)\bsharedWithMe\b`),
	regexp.MustCompile(`(?i)\bvisibility\s*=`),
}

// IsStructuredQuery reports whether q uses Drive's query syntax rather
// than free text.
func IsStructuredQuery(q string) bool {
	for _, p := range structuredQueryPatterns {
		if p.MatchString(q) {
			return true
		}
	}
	return false
}

// BuildSearchQuery turns user input into a Drive query. Structured queries
// pass through unchanged; free text becomes a fullText search with single
// quotes and backslashes escaped.
func BuildSearchQuery(input string) string {
	q := strings.TrimSpace(input)
	if q == "" {
		return ""
	}
	if IsStructuredQuery(q) {
		return q
	}
	escaped := strings.ReplaceAll(q, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return fmt.Sprintf("fullText contains '%s'", escaped)
}
