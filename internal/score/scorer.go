package score

import (
	"fmt"
	"math"
	"strings"
)

// Tie is reported as the winner when the best value is shared
const Tie = "tie"

// Result is one product scraped from one source
type Result struct {
	Source  string            `json:"source"`
	Name    string            `json:"name,omitempty"`
	Chipset string            `json:"chipset,omitempty"`
	Fields  map[string]string `json:"-"`
	Valid   bool              `json:"valid"`
	Reason  string            `json:"reason,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Product groups the results of every source for one phone
type Product struct {
	Name    string   `json:"phone"`
	Results []Result `json:"results"`
}

// PhoneResult is a per-product line in a source's statistics
type PhoneResult struct {
	Phone      string `json:"phone"`
	Name       string `json:"name,omitempty"`
	Chipset    string `json:"chipset,omitempty"`
	SpecsCount int    `json:"specsCount"`
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Label renders the result for the per-product table
func (p PhoneResult) Label() string {
	switch {
	case p.Error != "":
		return "Error"
	case p.Valid:
		return fmt.Sprintf("✓ %d specs", p.SpecsCount)
	default:
		chipset := p.Chipset
		if chipset == "" {
			chipset = "N/A"
		}
		if r := []rune(chipset); len(r) > 20 {
			chipset = string(r[:20])
		}
		return "✗ Wrong: " + chipset
	}
}

// SourceStats aggregates one source across all products
type SourceStats struct {
	Source      string        `json:"source"`
	Valid       int           `json:"valid"`
	Invalid     int           `json:"invalid"`
	Errors      int           `json:"errors"`
	Total       int           `json:"total"`
	TotalSpecs  int           `json:"totalSpecs"`
	SuccessRate float64       `json:"successRate"` // Valid / Total, 0..1
	AvgSpecs    float64       `json:"avgSpecs"`
	Phones      []PhoneResult `json:"phones"`
}

// Winner names the best source for one metric
type Winner struct {
	Metric string `json:"metric"`
	Winner string `json:"winner"`
}

// Row is one product across sources, labels in source order
type Row struct {
	Phone  string   `json:"phone"`
	Labels []string `json:"labels"`
}

// Comparison is the result of comparing sources over the same products
type Comparison struct {
	Sources []SourceStats `json:"sources"`
	Winners []Winner      `json:"winners"`
	Rows    []Row         `json:"rows"`
}

// Metric names used in winners
const (
	MetricValid       = "valid"
	MetricSuccessRate = "success_rate"
	MetricAvgSpecs    = "avg_specs"
	MetricErrors      = "errors"
)

// CountSpecs counts fields with a real value. "N/A", "Not available" and "Not found" do not count.
func CountSpecs(fields map[string]string) int {
	n := 0
	for _, v := range fields {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "n/a", "not available", "not found":
			continue
		}
		n++
	}
	return n
}

// Compare aggregates per-source statistics and picks winners. Sources keep
// the order of their first appearance.
func Compare(products []Product) Comparison {
	var order []string
	stats := make(map[string]*SourceStats)

	for _, p := range products {
		for _, r := range p.Results {
			s, ok := stats[r.Source]
			if !ok {
				s = &SourceStats{Source: r.Source}
				stats[r.Source] = s
				order = append(order, r.Source)
			}

			phone := PhoneResult{Phone: p.Name, Name: r.Name, Chipset: r.Chipset, Valid: r.Valid, Reason: r.Reason}
			switch {
			case r.Error != "":
				s.Errors++
				phone.Error = r.Error
				phone.Valid = false
			case r.Valid:
				s.Valid++
			default:
				s.Invalid++
			}
			if r.Error == "" {
				phone.SpecsCount = CountSpecs(r.Fields)
				s.TotalSpecs += phone.SpecsCount
			}
			s.Phones = append(s.Phones, phone)
		}
	}

	cmp := Comparison{}
	for _, name := range order {
		s := stats[name]
		s.Total = s.Valid + s.Invalid + s.Errors
		if s.Total > 0 {
			s.SuccessRate = float64(s.Valid) / float64(s.Total)
			s.AvgSpecs = math.Round(float64(s.TotalSpecs)/float64(s.Total)*10) / 10
		}
		cmp.Sources = append(cmp.Sources, *s)
	}

	cmp.Winners = []Winner{
		{MetricValid, best(cmp.Sources, func(s SourceStats) float64 { return float64(s.Valid) })},
		{MetricSuccessRate, best(cmp.Sources, func(s SourceStats) float64 { return s.SuccessRate })},
		{MetricAvgSpecs, best(cmp.Sources, func(s SourceStats) float64 { return s.AvgSpecs })},
		{MetricErrors, best(cmp.Sources, func(s SourceStats) float64 { return -float64(s.Errors) })},
	}

	for _, p := range products {
		row := Row{Phone: p.Name}
		for _, name := range order {
			label := "-"
			for _, phone := range stats[name].Phones {
				if phone.Phone == p.Name {
					label = phone.Label()
					break
				}
			}
			row.Labels = append(row.Labels, label)
		}
		cmp.Rows = append(cmp.Rows, row)
	}

	return cmp
}

// best returns the source with the highest value, or Tie when it is shared
func best(sources []SourceStats, value func(SourceStats) float64) string {
	if len(sources) == 0 {
		return Tie
	}
	winner := sources[0].Source
	top := value(sources[0])
	shared := false
	for _, s := range sources[1:] {
		v := value(s)
		switch {
		case v > top:
			winner, top, shared = s.Source, v, false
		case v == top:
			shared = true
		}
	}
	if shared {
		return Tie
	}
	return winner
}
