package score

import "testing"

func TestCountSpecs(t *testing.T) {
	fields := map[string]string{
		"phone_name":       "Google Pixel 8",
		"chipset":          "Google Tensor G3",
		"card_slot":        "N/A",
		"audio_jack":       "Not available",
		"nfc":              "not found",
		"sensors":          "  ",
		"battery_charging": "",
	}
	if got := CountSpecs(fields); got != 2 {
		t.Errorf("Expected 2 specs, got %d", got)
	}
	if got := CountSpecs(nil); got != 0 {
		t.Errorf("Expected 0 for nil map, got %d", got)
	}
}

func TestCompare_Winners(t *testing.T) {
	full := map[string]string{"phone_name": "x", "chipset": "y", "ram": "8GB", "display_size": "6.2"}
	partial := map[string]string{"phone_name": "x", "chipset": "y"}

	products := []Product{
		{Name: "Google Pixel 8", Results: []Result{
			{Source: "gsmarena", Chipset: "Google Tensor G3", Fields: full, Valid: true},
			{Source: "91mobiles", Chipset: "Google Tensor G3", Fields: partial, Valid: true},
		}},
		{Name: "Samsung Galaxy S24", Results: []Result{
			{Source: "gsmarena", Chipset: "Exynos 2400", Fields: full, Valid: true},
			{Source: "91mobiles", Chipset: "Apple A17 Pro Bionic chip", Fields: partial, Valid: false, Reason: "contains invalid keyword"},
		}},
		{Name: "Apple iPhone 15", Results: []Result{
			{Source: "gsmarena", Error: "fetch failed"},
			{Source: "91mobiles", Error: "fetch failed"},
		}},
	}

	cmp := Compare(products)

	if len(cmp.Sources) != 2 || cmp.Sources[0].Source != "gsmarena" || cmp.Sources[1].Source != "91mobiles" {
		t.Fatalf("Unexpected source order: %+v", cmp.Sources)
	}

	gsm := cmp.Sources[0]
	if gsm.Valid != 2 || gsm.Invalid != 0 || gsm.Errors != 1 || gsm.Total != 3 {
		t.Errorf("Unexpected gsmarena counts: %+v", gsm)
	}
	if gsm.TotalSpecs != 8 {
		t.Errorf("Expected 8 total specs, got %d", gsm.TotalSpecs)
	}
	if gsm.AvgSpecs != 2.7 {
		t.Errorf("Expected avg 2.7, got %v", gsm.AvgSpecs)
	}

	m91 := cmp.Sources[1]
	if m91.Valid != 1 || m91.Invalid != 1 || m91.Errors != 1 {
		t.Errorf("Unexpected 91mobiles counts: %+v", m91)
	}

	want := map[string]string{
		MetricValid:       "gsmarena",
		MetricSuccessRate: "gsmarena",
		MetricAvgSpecs:    "gsmarena",
		MetricErrors:      Tie,
	}
	for _, w := range cmp.Winners {
		if want[w.Metric] != w.Winner {
			t.Errorf("Metric %s: expected %s, got %s", w.Metric, want[w.Metric], w.Winner)
		}
	}

	if len(cmp.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(cmp.Rows))
	}
	if got := cmp.Rows[0].Labels; got[0] != "✓ 4 specs" || got[1] != "✓ 2 specs" {
		t.Errorf("Unexpected first row: %v", got)
	}
	if got := cmp.Rows[1].Labels[1]; got != "✗ Wrong: Apple A17 Pro Bionic" {
		t.Errorf("Unexpected invalid label: %q", got)
	}
	if got := cmp.Rows[2].Labels; got[0] != "Error" || got[1] != "Error" {
		t.Errorf("Unexpected error row: %v", got)
	}
}

func TestCompare_FewerErrorsWins(t *testing.T) {
	products := []Product{
		{Name: "A", Results: []Result{
			{Source: "one", Valid: true},
			{Source: "two", Error: "timeout"},
		}},
	}
	cmp := Compare(products)
	for _, w := range cmp.Winners {
		if w.Metric == MetricErrors && w.Winner != "one" {
			t.Errorf("Expected source with fewer errors to win, got %s", w.Winner)
		}
	}
}

func TestCompare_Empty(t *testing.T) {
	cmp := Compare(nil)
	if len(cmp.Sources) != 0 || len(cmp.Rows) != 0 {
		t.Errorf("Expected empty comparison, got %+v", cmp)
	}
	for _, w := range cmp.Winners {
		if w.Winner != Tie {
			t.Errorf("Expected tie for %s on empty input, got %s", w.Metric, w.Winner)
		}
	}
}

func TestPhoneResult_Label(t *testing.T) {
	tests := []struct {
		name  string
		phone PhoneResult
		want  string
	}{
		{"error", PhoneResult{Error: "x", Valid: true}, "Error"},
		{"valid", PhoneResult{Valid: true, SpecsCount: 31}, "✓ 31 specs"},
		{"invalid without chipset", PhoneResult{}, "✗ Wrong: N/A"},
		{"invalid short chipset", PhoneResult{Chipset: "Tensor"}, "✗ Wrong: Tensor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.phone.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}
