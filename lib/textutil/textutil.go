package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName produces a comparison key for a person's name: lowercase,
// with every run of whitespace collapsed to a single space.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, " ")
	return name
}

// MatchRole reports whether the lowercased role contains any of the matchers.
// Matchers are expected to be lowercase already.
func MatchRole(role string, matchers []string) bool {
	role = strings.ToLower(role)
	for _, m := range matchers {
		if strings.Contains(role, m) {
			return true
		}
	}
	return false
}

// RemoveBrackets drops every parenthesized span (nested ones included) and
// trims the result.
//
// A ')' only closes a span when one is open; a stray ')' outside of any span
// is kept as a regular character.
func RemoveBrackets(text string) string {
	if !strings.ContainsAny(text, "()") {
		return strings.TrimSpace(text)
	}

	var out strings.Builder
	depth := 0
	for _, c := range text {
		switch {
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case depth == 0:
			out.WriteRune(c)
		}
	}
	return strings.TrimSpace(out.String())
}
