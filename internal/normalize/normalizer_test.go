package normalize

import (
	"testing"
	"time"

	"github.com/ppiankov/phonespec/internal/model"
)

func TestDisplayAndBattery(t *testing.T) {
	if v, ok := DisplayInches("6.8 inches, 113.5 cm2 (~88.5% screen-to-body ratio)"); !ok || v != 6.8 {
		t.Errorf("DisplayInches = %v, %v", v, ok)
	}
	if v, ok := DisplayInches(`6.1"`); !ok || v != 6.1 {
		t.Errorf("DisplayInches quote = %v, %v", v, ok)
	}
	if _, ok := DisplayInches("large"); ok {
		t.Error("expected no display size")
	}
	if v, ok := BatteryMAh("Li-Ion 5000 mAh, non-removable"); !ok || v != 5000 {
		t.Errorf("BatteryMAh = %v, %v", v, ok)
	}
	if v, ok := BatteryMAh("5,100mAh"); !ok || v != 5100 {
		t.Errorf("BatteryMAh comma = %v, %v", v, ok)
	}
	if _, ok := BatteryMAh("big"); ok {
		t.Error("expected no battery")
	}
}

func TestParseTristate(t *testing.T) {
	tests := map[string]model.Tristate{
		"Yes":                        model.TriYes,
		"Yes, market dependent":      model.TriYes,
		"No":                         model.TriNo,
		"no":                         model.TriNo,
		"None":                       model.TriNo,
		"No, 3.5mm jack absent":      model.TriNo,
		"microSDXC (dedicated slot)": model.TriYes,
		"N/A":                        model.TriUnknown,
		"":                           model.TriUnknown,
		"Unspecified":                model.TriUnknown,
		"Not available":              model.TriUnknown,
	}
	for in, want := range tests {
		if got := ParseTristate(in); got != want {
			t.Errorf("ParseTristate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHas5G(t *testing.T) {
	if Has5G("GSM / HSPA / LTE / 5G", "") != model.TriYes {
		t.Error("expected 5G from technology")
	}
	if Has5G("", "1, 3, 5, 7, 28, 78 SA/NSA") != model.TriYes {
		t.Error("expected 5G from bands")
	}
	if Has5G("GSM / HSPA / LTE", "") != model.TriNo {
		t.Error("expected no 5G")
	}
	if Has5G("", "N/A") != model.TriUnknown {
		t.Error("expected unknown 5G")
	}
}

func TestModelName(t *testing.T) {
	tests := []struct{ brand, name, want string }{
		{"Samsung", "Samsung Galaxy S24 Ultra", "Galaxy S24 Ultra"},
		{"samsung", "SAMSUNG Galaxy A55", "Galaxy A55"},
		{"Google", "Pixel 8 Pro", "Pixel 8 Pro"},
		{"Apple", "Applesauce X", "Applesauce X"},
		{"Nothing", "Nothing", "Nothing"},
		{"", "Foo 1", "Foo 1"},
	}
	for _, tt := range tests {
		if got := ModelName(tt.brand, tt.name); got != tt.want {
			t.Errorf("ModelName(%q, %q) = %q, want %q", tt.brand, tt.name, got, tt.want)
		}
	}
}

func TestMarketStatus(t *testing.T) {
	tests := map[string]string{
		"Available. Released 2024, January 24": StatusAvailable,
		"Discontinued":                         StatusDiscontinued,
		"Coming soon. Exp. release 2025":       StatusComingSoon,
		"Rumored":                              StatusRumored,
		"":                                     StatusAvailable,
	}
	for in, want := range tests {
		if got := MarketStatus(in); got != want {
			t.Errorf("MarketStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	fetched := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := model.SourceRecord{
		Source:    "gsmarena",
		URL:       "https://www.gsmarena.com/samsung_galaxy_s24_ultra-12771.php",
		FetchedAt: fetched,
		Brand:     "Samsung",
		Fields: map[string]string{
			model.FieldPhoneName:         "Samsung Galaxy S24 Ultra",
			model.FieldChipset:           "Qualcomm SM8650-AC Snapdragon 8 Gen 3 (4 nm)",
			model.FieldDisplaySize:       "6.8 inches, 113.5 cm2",
			model.FieldBatteryCapacity:   "Li-Ion 5000 mAh, non-removable",
			model.FieldAnnounced:         "2024, January 17",
			model.FieldStatus:            "Available. Released 2024, January 24",
			model.FieldPrice:             "$ 1199.99 / € 1099",
			model.FieldNetworkTechnology: "GSM / CDMA / HSPA / EVDO / LTE / 5G",
			model.FieldNFC:               "Yes",
			model.FieldAudioJack:         "No",
			model.FieldCardSlot:          "N/A",
			model.FieldWeight:            "232 g",
			"unmapped":                   "ignored",
		},
		ImageCandidates: []string{"https://fdn2.gsmarena.com/vv/bigpic/samsung-galaxy-s24-ultra-5g-sm-s928-stylus.jpg"},
	}

	n := NewNormalizer(model.DefaultConfig().Normalize, nil)
	out := n.Normalize(rec)

	if out.Model != "Galaxy S24 Ultra" {
		t.Errorf("model = %q", out.Model)
	}
	if out.Slug != "samsung-galaxy-s24-ultra" {
		t.Errorf("slug = %q", out.Slug)
	}
	if out.ReleaseDateISO() != "2024-01-24" {
		t.Errorf("release date = %q", out.ReleaseDateISO())
	}
	if out.PriceUSD == nil || *out.PriceUSD != 1199 {
		t.Errorf("price = %v", out.PriceUSD)
	}
	if out.DisplayInch == nil || *out.DisplayInch != 6.8 {
		t.Errorf("display = %v", out.DisplayInch)
	}
	if out.BatteryMAh == nil || *out.BatteryMAh != 5000 {
		t.Errorf("battery = %v", out.BatteryMAh)
	}
	if out.NFC != model.TriYes || out.AudioJack != model.TriNo || out.CardSlot != model.TriUnknown || out.Has5G != model.TriYes {
		t.Errorf("tristates = nfc %v jack %v card %v 5g %v", out.NFC, out.AudioJack, out.CardSlot, out.Has5G)
	}
	if out.MarketStatus != StatusAvailable {
		t.Errorf("market status = %q", out.MarketStatus)
	}
	if got := out.Specs[model.CategoryBody][model.FieldWeight]; got != "232 g" {
		t.Errorf("body.weight = %q", got)
	}
	if _, ok := out.Specs[model.CategoryMemory][model.FieldCardSlot]; ok {
		t.Error("placeholder values must not be carried into specs")
	}
	if out.Spec("unmapped") != "" {
		t.Error("unmapped fields must be dropped")
	}
	if len(out.ImageCandidates) != 1 || !out.FetchedAt.Equal(fetched) {
		t.Errorf("provenance not carried: %+v", out)
	}
}

func TestNormalizer_Empty(t *testing.T) {
	out := NewNormalizer(model.NormalizeConfig{}, nil).Normalize(model.SourceRecord{Brand: "Apple"})

	if out.ReleaseDate != nil || out.PriceUSD != nil || out.DisplayInch != nil || out.BatteryMAh != nil {
		t.Errorf("expected nil typed values, got %+v", out)
	}
	if out.Slug != "apple" {
		t.Errorf("slug = %q", out.Slug)
	}
	if len(out.Warnings) == 0 {
		t.Error("expected a warning for the missing name")
	}
}

func TestNormalizer_SlugStableAcrossRuns(t *testing.T) {
	n := NewNormalizer(model.NormalizeConfig{}, nil)
	rec := model.SourceRecord{Brand: "Google", Fields: map[string]string{model.FieldPhoneName: "Google Pixel 8 Pro"}}

	a := n.Normalize(rec)
	rec.FetchedAt = time.Now()
	b := n.Normalize(rec)
	if a.Slug != b.Slug || a.Slug != "google-pixel-8-pro" {
		t.Errorf("slug changed between runs: %q vs %q", a.Slug, b.Slug)
	}
}
