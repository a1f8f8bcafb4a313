// Package sanitize strips markup from chat text before it crosses a trust
// boundary.
package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// The strict policy removes every element and drops script/style bodies.
var policy = bluemonday.StrictPolicy()

// maxPasses bounds how many layers of entity encoding Text peels off.
const maxPasses = 8

// Text removes HTML and script content from s and trims surrounding space.
// Entities are decoded before the policy runs, so encoded markup is stripped
// like literal markup, and the policy's own escapes are decoded afterwards so
// plain text survives unchanged ("a & b" stays "a & b"). Passes repeat until
// the result is stable, which makes Text idempotent.
func Text(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < maxPasses; i++ {
		if s == "" || !strings.ContainsAny(s, "<>&") {
			return s
		}
		next := strings.TrimSpace(html.UnescapeString(policy.Sanitize(html.UnescapeString(s))))
		if next == s {
			return s
		}
		s = next
	}
	// Still unstable: keep the policy's escaped form so no markup survives.
	return strings.TrimSpace(policy.Sanitize(s))
}

// Truncate caps s at max characters without splitting a rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// Message is the client-side pipeline: trim, strip markup, cap length.
func Message(s string, max int) string {
	return Truncate(Text(s), max)
}

// Length counts characters the way the length limit is enforced.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}
