package model

import (
	"strings"
	"time"
)

// Descriptor is one operator-supplied input line
type Descriptor struct {
	URL             string `yaml:"url" json:"url"`                                               // Primary specification page
	Brand           string `yaml:"brand" json:"brand"`                                           // Brand as known to the operator
	ExpectedChipset string `yaml:"expected_chipset,omitempty" json:"expected_chipset,omitempty"` // Optional chipset hint
	GalleryURL      string `yaml:"gallery_url,omitempty" json:"gallery_url,omitempty"`           // Optional secondary page
	CompareURL      string `yaml:"compare_url,omitempty" json:"compare_url,omitempty"`           // Second source for comparison mode
}

// SourceID identifies the descriptor in reports and checkpoints
func (d Descriptor) SourceID() string {
	return d.URL
}

// SourceRecord is the raw extraction result for one product from one source
type SourceRecord struct {
	Source          string            `json:"source"`     // Source identifier, e.g. "gsmarena"
	URL             string            `json:"source_url"` // Page the fields came from
	FetchedAt       time.Time         `json:"fetched_at"`
	Brand           string            `json:"brand"`
	ExpectedChipset string            `json:"expected_chipset,omitempty"`
	Fields          map[string]string `json:"fields"`
	ImageCandidates []string          `json:"image_candidates,omitempty"`
}

// Field returns a trimmed field value, or "" when the value is absent or a placeholder
func (r *SourceRecord) Field(name string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	v := strings.TrimSpace(r.Fields[name])
	if IsPlaceholder(v) {
		return ""
	}
	return v
}

// IsPlaceholder reports whether a scraped value carries no information
func IsPlaceholder(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "n/a", "na", "-", "not available", "not found", "unknown", "null":
		return true
	}
	return false
}

// NormalizedRecord is the canonical typed projection of a SourceRecord
type NormalizedRecord struct {
	Source    string    `json:"source"`
	SourceURL string    `json:"source_url"`
	FetchedAt time.Time `json:"fetched_at"`

	Brand   string `json:"brand"`
	Name    string `json:"name"`  // Full product name, e.g. "Samsung Galaxy S24 Ultra"
	Model   string `json:"model"` // Name without the brand prefix
	Slug    string `json:"slug"`
	Chipset string `json:"chipset,omitempty"`

	ExpectedChipset string `json:"expected_chipset,omitempty"`

	ReleaseDate  *time.Time `json:"release_date,omitempty"`
	PriceUSD     *int       `json:"price_usd,omitempty"` // Whole US dollars
	DisplayInch  *float64   `json:"display_inches,omitempty"`
	BatteryMAh   *int       `json:"battery_mah,omitempty"`
	MarketStatus string     `json:"market_status"`

	NFC       Tristate `json:"nfc"`
	AudioJack Tristate `json:"audio_jack"`
	CardSlot  Tristate `json:"card_slot"`
	Has5G     Tristate `json:"has_5g"`

	// Specs holds pass-through values by category, keyed by canonical field name
	Specs map[Category]map[string]string `json:"specs"`

	ImageCandidates []string        `json:"-"`
	Image           ImageResolution `json:"image"`
	Warnings        []string        `json:"warnings,omitempty"`
}

// Spec returns a pass-through value by field name regardless of category
func (r *NormalizedRecord) Spec(field string) string {
	for _, fields := range r.Specs {
		if v, ok := fields[field]; ok {
			return v
		}
	}
	return ""
}

// ReleaseDateISO returns the release date as YYYY-MM-DD or ""
func (r *NormalizedRecord) ReleaseDateISO() string {
	if r.ReleaseDate == nil {
		return ""
	}
	return r.ReleaseDate.Format("2006-01-02")
}

// CategoryDocs builds the per-category documents persisted with the product.
// Tri-state flags are merged into their categories so consumers never re-parse "Yes"/"No".
func (r *NormalizedRecord) CategoryDocs() map[Category]map[string]any {
	docs := make(map[Category]map[string]any)
	for cat, fields := range r.Specs {
		if len(fields) == 0 {
			continue
		}
		doc := make(map[string]any, len(fields))
		for k, v := range fields {
			doc[k] = v
		}
		docs[cat] = doc
	}

	set := func(cat Category, key string, t Tristate) {
		if t == TriUnknown {
			return
		}
		if docs[cat] == nil {
			docs[cat] = make(map[string]any)
		}
		docs[cat][key] = t.Bool()
	}
	set(CategoryConnectivity, "has_nfc", r.NFC)
	set(CategoryAudio, "has_audio_jack", r.AudioJack)
	set(CategoryMemory, "has_card_slot", r.CardSlot)
	set(CategoryNetwork, "has_5g", r.Has5G)

	return docs
}

// DataSource is one provenance entry appended to a product's spec document
type DataSource struct {
	Source     string    `json:"source"`
	URL        string    `json:"url"`
	ScrapedAt  time.Time `json:"scraped_at"`
	Valid      bool      `json:"valid"`
	Validation []Outcome `json:"validation,omitempty"`
}
