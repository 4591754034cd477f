package intake

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

var entityReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Sanitize strips HTML tags and entity-escapes the characters that matter
// when a field ends up inside generated HTML (email bodies, logs). Applied
// to every string field before an Order is built.
func Sanitize(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(entityReplacer.Replace(s))
}
