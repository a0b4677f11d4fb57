package imageres

import (
	"net/url"
	"path"
	"strings"

	"github.com/ppiankov/phonespec/internal/model"
	"github.com/ppiankov/phonespec/internal/normalize"
)

// Resolver picks the best product image among scraped candidates
type Resolver struct {
	cfg     model.ImageConfig
	folders map[string]string // Keyed by lowercase brand
}

// NewResolver creates a resolver. Empty fields fall back to the defaults.
func NewResolver(cfg model.ImageConfig) *Resolver {
	def := model.DefaultConfig().Images
	if cfg.HighResMarker == "" {
		cfg.HighResMarker = def.HighResMarker
	}
	if cfg.LowResMarker == "" {
		cfg.LowResMarker = def.LowResMarker
	}
	if cfg.HighThreshold <= 0 {
		cfg.HighThreshold = def.HighThreshold
	}
	if cfg.LowThreshold <= 0 {
		cfg.LowThreshold = def.LowThreshold
	}
	if cfg.HighTemplate == "" {
		cfg.HighTemplate = def.HighTemplate
	}
	if cfg.LowTemplate == "" {
		cfg.LowTemplate = def.LowTemplate
	}
	if cfg.BrandFolders == nil {
		cfg.BrandFolders = def.BrandFolders
	}

	folders := make(map[string]string, len(cfg.BrandFolders))
	for brand, folder := range cfg.BrandFolders {
		folders[strings.ToLower(strings.TrimSpace(brand))] = folder
	}

	return &Resolver{cfg: cfg, folders: folders}
}

// Resolve never fails. Without a candidate clearing either threshold it
// returns a constructed high-resolution URL with a constructed low-resolution fallback.
func (r *Resolver) Resolve(brand, slug string, candidates []string) model.ImageResolution {
	var high, low []string
	for _, c := range candidates {
		switch {
		case strings.Contains(c, r.cfg.HighResMarker):
			high = append(high, c)
		case strings.Contains(c, r.cfg.LowResMarker):
			low = append(low, c)
		}
	}

	tokens := slugTokens(slug)

	var lowMatch string
	for _, c := range low {
		if MatchRatio(tokens, c) >= r.cfg.LowThreshold {
			lowMatch = c
			break
		}
	}

	for _, c := range high {
		if MatchRatio(tokens, c) >= r.cfg.HighThreshold {
			return model.ImageResolution{URL: c, Tier: model.ImageTierHigh, FallbackURL: lowMatch}
		}
	}

	if lowMatch != "" {
		return model.ImageResolution{URL: lowMatch, Tier: model.ImageTierLow}
	}

	return r.Construct(brand, slug)
}

// Construct builds the template URLs for a product
func (r *Resolver) Construct(brand, slug string) model.ImageResolution {
	return model.ImageResolution{
		URL:         r.fill(r.cfg.HighTemplate, brand, slug),
		Tier:        model.ImageTierConstructed,
		FallbackURL: r.fill(r.cfg.LowTemplate, brand, slug),
	}
}

// Folder returns the image folder for a brand
func (r *Resolver) Folder(brand string) string {
	if f, ok := r.folders[strings.ToLower(strings.TrimSpace(brand))]; ok {
		return f
	}
	return normalize.Slug(brand)
}

func (r *Resolver) fill(tmpl, brand, slug string) string {
	return strings.NewReplacer("{folder}", r.Folder(brand), "{slug}", slug).Replace(tmpl)
}

// MatchRatio is the share of slug tokens found in the candidate's file name
func MatchRatio(tokens []string, candidate string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	name := strings.ToLower(fileName(candidate))
	hits := 0
	for _, tok := range tokens {
		if strings.Contains(name, tok) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

func slugTokens(slug string) []string {
	var tokens []string
	for _, t := range strings.Split(strings.ToLower(slug), "-") {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func fileName(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(raw)
}
