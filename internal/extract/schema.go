package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/phonespec/internal/llm"
	"github.com/ppiankov/phonespec/internal/model"
)

// SchemaExtractor asks an LLM provider to fill the field schema from page text
type SchemaExtractor struct {
	provider     llm.Provider
	instructions string
	maxChars     int
}

// NewSchemaExtractor creates a schema-guided extractor
func NewSchemaExtractor(provider llm.Provider, instructions string, maxChars int) *SchemaExtractor {
	return &SchemaExtractor{
		provider:     provider,
		instructions: instructions,
		maxChars:     maxChars,
	}
}

// Extract sends the page text and schema to the provider and checks required fields
func (e *SchemaExtractor) Extract(ctx context.Context, page Page, schema model.Schema) (FieldMap, error) {
	if strings.TrimSpace(page.Content) == "" {
		return nil, &model.ExtractionError{URL: page.URL, Err: ErrEmptyContent}
	}

	text := Truncate(PageText(page.Content, page.ContentType), e.maxChars)
	if text == "" {
		return nil, &model.ExtractionError{URL: page.URL, Err: ErrEmptyContent}
	}

	resp, err := e.provider.ExtractFields(ctx, llm.ExtractRequest{
		URL:             page.URL,
		Brand:           page.Brand,
		ExpectedChipset: page.ExpectedChipset,
		Content:         text,
		Schema:          schema,
		Instructions:    e.instructions,
	})
	if err != nil {
		return nil, &model.ExtractionError{URL: page.URL, Err: fmt.Errorf("%s: %w", e.provider.Name(), err)}
	}

	fields := make(FieldMap, len(resp.Fields))
	for name, v := range resp.Fields {
		fields[name] = stringify(v)
	}
	fields = fields.Restrict(schema)

	if missing := fields.Missing(schema.Required()); len(missing) > 0 {
		return nil, &model.ExtractionError{URL: page.URL, Missing: missing}
	}
	return fields, nil
}

// stringify renders a decoded JSON value as a field string
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
