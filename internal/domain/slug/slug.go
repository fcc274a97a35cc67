package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var pattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Valid reports whether s is a lowercase, hyphen separated slug.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Make derives a slug from free text, folding accents and collapsing separators.
func Make(text string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(text)))

	var b strings.Builder
	pendingDash := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}
