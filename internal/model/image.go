package model

// ImageTier describes how an image URL was chosen
type ImageTier string

const (
	ImageTierHigh        ImageTier = "high"        // Matched a high-resolution candidate
	ImageTierLow         ImageTier = "low"         // Matched a low-resolution candidate
	ImageTierConstructed ImageTier = "constructed" // Built from the brand folder template
)

// ImageResolution is the chosen product image
type ImageResolution struct {
	URL         string    `json:"url"`
	Tier        ImageTier `json:"tier"`
	FallbackURL string    `json:"fallback_url,omitempty"`
}

// URLs returns the chosen URL followed by the fallback, if any
func (r ImageResolution) URLs() []string {
	var urls []string
	if r.URL != "" {
		urls = append(urls, r.URL)
	}
	if r.FallbackURL != "" && r.FallbackURL != r.URL {
		urls = append(urls, r.FallbackURL)
	}
	return urls
}

// ProductImage is a stored product with its current image, as seen by the image backfill
type ProductImage struct {
	ProductID string `json:"product_id"`
	Brand     string `json:"brand"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
}
