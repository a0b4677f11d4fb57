package normalize

import (
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s, collapses every run of non-alphanumerics into one hyphen
// and trims hyphens from both ends. Slug(Slug(s)) == Slug(s).
func Slug(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
