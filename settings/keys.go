package settings

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// sanitizeKey lowercases s and keeps only [a-z0-9_-]. Used for language
// keys in term overrides so "IT", " it " and "it" land in the same bucket.
func sanitizeKey(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		r = unicode.ToLower(r)
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteRune(r)
		}
	}

	return b.String()
}

// textPolicy drops every tag. script and style elements lose their content.
var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup, folds runs of whitespace (line breaks and tabs
// included) into single spaces, drops control characters and trims.
func sanitizeText(s string) string {
	if s == "" {
		return ""
	}

	// The policy escapes the text it keeps; stored values are plain text.
	stripped := html.UnescapeString(textPolicy.Sanitize(s))
	stripped = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, stripped)

	return strings.Join(strings.Fields(stripped), " ")
}
