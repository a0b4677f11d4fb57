package normalize

import (
	"strings"

	"github.com/ppiankov/phonespec/internal/model"
)

// Market status values
const (
	StatusAvailable    = "Available"
	StatusComingSoon   = "Coming soon"
	StatusDiscontinued = "Discontinued"
	StatusRumored      = "Rumored"
	StatusCancelled    = "Cancelled"
)

// Normalizer projects raw source records onto typed records
type Normalizer struct {
	prices     PriceTable
	defaultDay int
	schema     model.Schema
}

// NewNormalizer creates a normalizer from configuration
func NewNormalizer(cfg model.NormalizeConfig, schema model.Schema) *Normalizer {
	table := DefaultPriceTable()
	if len(cfg.FXRates) > 0 {
		table.Rates = make(map[string]float64, len(cfg.FXRates))
		for code, rate := range cfg.FXRates {
			table.Rates[strings.ToUpper(code)] = rate
		}
	}
	if cfg.PriceMinUSD > 0 {
		table.MinUSD = cfg.PriceMinUSD
	}
	if cfg.PriceMaxUSD > 0 {
		table.MaxUSD = cfg.PriceMaxUSD
	}

	day := cfg.DefaultDay
	if day < 1 || day > 28 {
		day = DefaultDay
	}

	if schema == nil {
		schema = model.PhoneSchema
	}

	return &Normalizer{prices: table, defaultDay: day, schema: schema}
}

// Normalize never fails: unparseable values stay nil or unknown.
func (n *Normalizer) Normalize(rec model.SourceRecord) model.NormalizedRecord {
	brand := strings.TrimSpace(rec.Brand)
	name := rec.Field(model.FieldPhoneName)

	out := model.NormalizedRecord{
		Source:          rec.Source,
		SourceURL:       rec.URL,
		FetchedAt:       rec.FetchedAt,
		Brand:           brand,
		Name:            name,
		Model:           ModelName(brand, name),
		Chipset:         rec.Field(model.FieldChipset),
		ExpectedChipset: strings.TrimSpace(rec.ExpectedChipset),
		MarketStatus:    MarketStatus(rec.Field(model.FieldStatus)),
		NFC:             ParseTristate(rec.Field(model.FieldNFC)),
		AudioJack:       ParseTristate(rec.Field(model.FieldAudioJack)),
		CardSlot:        ParseTristate(rec.Field(model.FieldCardSlot)),
		Has5G:           Has5G(rec.Field(model.FieldNetworkTechnology), rec.Field(model.FieldNetwork5GBands)),
		Specs:           make(map[model.Category]map[string]string),
		ImageCandidates: append([]string(nil), rec.ImageCandidates...),
	}
	out.Slug = Slug(brand + " " + out.Model)

	if name == "" {
		out.Warnings = append(out.Warnings, "no phone name extracted")
	}

	if t, ok := parseDate(rec.Field(model.FieldAnnounced), rec.Field(model.FieldStatus), n.defaultDay); ok {
		out.ReleaseDate = &t
	}
	if p, ok := n.prices.Parse(rec.Field(model.FieldPrice)); ok {
		out.PriceUSD = &p
	}
	if d, ok := DisplayInches(rec.Field(model.FieldDisplaySize)); ok {
		out.DisplayInch = &d
	}
	if b, ok := BatteryMAh(rec.Field(model.FieldBatteryCapacity)); ok {
		out.BatteryMAh = &b
	}

	for _, f := range n.schema {
		if f.Category == "" {
			continue
		}
		v := rec.Field(f.Name)
		if v == "" {
			continue
		}
		if out.Specs[f.Category] == nil {
			out.Specs[f.Category] = make(map[string]string)
		}
		out.Specs[f.Category][f.Name] = v
	}

	return out
}

// ModelName strips a leading brand from the product name
func ModelName(brand, name string) string {
	name = strings.TrimSpace(name)
	brand = strings.TrimSpace(brand)
	if brand == "" || len(name) < len(brand) {
		return name
	}
	if strings.EqualFold(name[:len(brand)], brand) {
		rest := name[len(brand):]
		if rest == "" {
			return name
		}
		// Only strip whole words: "Nothing Phone" yes, "Applesauce" no
		if c := rest[0]; c == ' ' || c == '-' || c == '_' {
			return strings.TrimSpace(strings.TrimLeft(rest, " -_"))
		}
	}
	return name
}

// MarketStatus maps a free-text status to one of the market status values
func MarketStatus(status string) string {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "discontinued"):
		return StatusDiscontinued
	case strings.Contains(s, "cancelled"):
		return StatusCancelled
	case strings.Contains(s, "rumored"):
		return StatusRumored
	case strings.Contains(s, "coming soon"):
		return StatusComingSoon
	default:
		return StatusAvailable
	}
}
