package extract

import (
	"regexp"
	"strings"
)

// TitleLabel makes a rule read the document title instead of a table row
const TitleLabel = "@title"

// Rule maps table rows to one canonical field.
// Rules for the same field are alternatives tried in order.
type Rule struct {
	Field     string
	Section   string   // Case-insensitive; empty matches any section
	Labels    []string // Case-insensitive row labels, or TitleLabel
	Pattern   *regexp.Regexp
	Transform func(string) string
}

// RuleSet is an ordered rule table
type RuleSet []Rule

// Apply runs every rule against doc. A rule that does not match leaves its field absent.
func (rs RuleSet) Apply(doc Document) FieldMap {
	fields := make(FieldMap)
	for _, r := range rs {
		if _, done := fields[r.Field]; done {
			continue
		}
		if v, ok := r.match(doc); ok {
			fields[r.Field] = v
		}
	}
	return fields
}

func (r Rule) match(doc Document) (string, bool) {
	for _, label := range r.Labels {
		if label == TitleLabel {
			if v, ok := r.accept(doc.Title); ok {
				return v, true
			}
			continue
		}
		for _, row := range doc.Rows {
			if r.Section != "" && !strings.EqualFold(row.Section, r.Section) {
				continue
			}
			if !strings.EqualFold(row.Label, label) {
				continue
			}
			if v, ok := r.accept(row.Value); ok {
				return v, true
			}
		}
	}
	return "", false
}

// accept applies the pattern and transform; the first capture group wins over the full match
func (r Rule) accept(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if r.Pattern != nil {
		m := r.Pattern.FindStringSubmatch(value)
		if m == nil {
			return "", false
		}
		value = m[0]
		if len(m) > 1 && m[1] != "" {
			value = m[1]
		}
	}
	if r.Transform != nil {
		value = r.Transform(value)
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
