package extract

import (
	"context"
	"errors"
	"strings"

	"github.com/ppiankov/phonespec/internal/model"
)

var (
	// ErrEmptyContent is returned for pages with no payload
	ErrEmptyContent = errors.New("empty page content")

	// ErrNoFields is returned when nothing on the page matched
	ErrNoFields = errors.New("no fields extracted")
)

// Page is a fetched document handed to an extractor
type Page struct {
	URL             string
	Content         string
	ContentType     string
	Brand           string
	ExpectedChipset string
}

// IsHTML reports whether the page should be parsed as HTML rather than markdown
func (p Page) IsHTML() bool {
	return isHTML(p.Content, p.ContentType)
}

func isHTML(content, contentType string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "html") {
		return true
	}
	if strings.Contains(ct, "markdown") || strings.HasPrefix(ct, "text/plain") {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(content), "<")
}

// FieldMap holds extracted values keyed by canonical field name
type FieldMap map[string]string

// Restrict returns a copy holding only non-empty fields known to the schema
func (m FieldMap) Restrict(schema model.Schema) FieldMap {
	out := make(FieldMap, len(m))
	for name, v := range m {
		if _, ok := schema.CategoryOf(name); !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out[name] = v
	}
	return out
}

// Missing returns the names from required that are absent or placeholders
func (m FieldMap) Missing(required []string) []string {
	var missing []string
	for _, name := range required {
		if model.IsPlaceholder(m[name]) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Extractor turns a page into a field map
type Extractor interface {
	Extract(ctx context.Context, page Page, schema model.Schema) (FieldMap, error)
}
