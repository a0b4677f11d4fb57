package adapters

import (
	"context"
	"net/url"
	"strings"

	"github.com/ppiankov/phonespec/internal/extract"
	"github.com/ppiankov/phonespec/internal/model"
)

// Adapter supplies the rule table for one specification site
type Adapter interface {
	// Name returns the source identifier recorded with every record
	Name() string

	// CanHandle checks if this adapter can handle the given URL/content
	CanHandle(url string, contentType string) bool

	// Rules returns the pattern table for the site's spec pages
	Rules() extract.RuleSet
}

// NameFinder is implemented by adapters that can derive a product name from a page URL
type NameFinder interface {
	NameFromURL(pageURL string) string
}

// GalleryFinder is implemented by adapters that know where a product's picture page lives
type GalleryFinder interface {
	GalleryURL(pageURL string) (string, bool)
}

// Registry manages site adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a registry with the built-in adapters
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	registry.Register(NewGSMArenaAdapter())
	registry.Register(NewMobiles91Adapter())

	// Set generic adapter as fallback
	registry.generic = NewGenericAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the best adapter for the given URL and content type
func (r *Registry) FindAdapter(url string, contentType string) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(url, contentType) {
			return adapter
		}
	}
	return r.generic
}

// SourceFor names the source of a page: the adapter name, or the bare host for unknown sites
func (r *Registry) SourceFor(pageURL string) string {
	adapter := r.FindAdapter(pageURL, "")
	if adapter != r.generic {
		return adapter.Name()
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return adapter.Name()
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// GalleryURL derives the picture page for a product page when the site supports it
func (r *Registry) GalleryURL(pageURL string) (string, bool) {
	if g, ok := r.FindAdapter(pageURL, "").(GalleryFinder); ok {
		return g.GalleryURL(pageURL)
	}
	return "", false
}

// PatternStrategy extracts with the rule table of the adapter matching each page
type PatternStrategy struct {
	registry *Registry
}

// NewPatternStrategy creates the pattern-based extraction strategy
func NewPatternStrategy(registry *Registry) *PatternStrategy {
	if registry == nil {
		registry = NewRegistry()
	}
	return &PatternStrategy{registry: registry}
}

// Extract implements extract.Extractor
func (s *PatternStrategy) Extract(ctx context.Context, page extract.Page, schema model.Schema) (extract.FieldMap, error) {
	adapter := s.registry.FindAdapter(page.URL, page.ContentType)

	fields, err := extract.NewPatternExtractor(adapter.Rules()).Extract(ctx, page, schema)
	if err != nil {
		return nil, err
	}

	if _, ok := fields[model.FieldPhoneName]; !ok {
		if nf, ok := adapter.(NameFinder); ok {
			if name := nf.NameFromURL(page.URL); name != "" {
				fields[model.FieldPhoneName] = name
			}
		}
	}
	return fields, nil
}

func hostMatches(rawURL, domain string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == domain || strings.HasSuffix(host, "."+domain)
}
