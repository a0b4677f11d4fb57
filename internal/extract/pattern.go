package extract

import (
	"context"
	"strings"

	"github.com/ppiankov/phonespec/internal/model"
)

// PatternExtractor applies a declarative rule table to the page's spec tables
type PatternExtractor struct {
	rules RuleSet
}

// NewPatternExtractor creates an extractor for one rule table
func NewPatternExtractor(rules RuleSet) *PatternExtractor {
	return &PatternExtractor{rules: rules}
}

// Extract parses the page and applies the rules. Required fields may be missing;
// the validator decides what a missing field means.
func (e *PatternExtractor) Extract(ctx context.Context, page Page, schema model.Schema) (FieldMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(page.Content) == "" {
		return nil, &model.ExtractionError{URL: page.URL, Err: ErrEmptyContent}
	}

	doc := ParsePage(page.Content, page.ContentType)
	fields := e.rules.Apply(doc).Restrict(schema)
	if len(fields) == 0 {
		return nil, &model.ExtractionError{URL: page.URL, Err: ErrNoFields}
	}
	return fields, nil
}
