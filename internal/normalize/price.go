package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const amount = `(\d[\d,]*(?:\.\d+)?)`

// currencyPatterns are tried in priority order
var currencyPatterns = []struct {
	code     string
	patterns []*regexp.Regexp
}{
	{"USD", []*regexp.Regexp{
		regexp.MustCompile(`\$\s*` + amount),
		regexp.MustCompile(`(?i)` + amount + `\s*USD\b`),
	}},
	{"EUR", []*regexp.Regexp{
		regexp.MustCompile(`€\s*` + amount),
		regexp.MustCompile(`(?i)` + amount + `\s*EUR\b`),
	}},
	{"GBP", []*regexp.Regexp{
		regexp.MustCompile(`£\s*` + amount),
		regexp.MustCompile(`(?i)` + amount + `\s*GBP\b`),
	}},
	{"INR", []*regexp.Regexp{
		regexp.MustCompile(`₹\s*` + amount),
		regexp.MustCompile(`(?i)\bRs\.?\s*` + amount),
		regexp.MustCompile(`(?i)` + amount + `\s*INR\b`),
	}},
}

var bareAmount = regexp.MustCompile(amount)

// PriceTable converts tagged prices to whole US dollars
type PriceTable struct {
	Rates  map[string]float64 // Currency code to USD
	MinUSD int                // Bare numbers below are rejected
	MaxUSD int                // Bare numbers above are rejected
}

// DefaultPriceTable holds approximate exchange rates
func DefaultPriceTable() PriceTable {
	return PriceTable{
		Rates: map[string]float64{
			"USD": 1,
			"EUR": 1.08,
			"GBP": 1.27,
			"INR": 0.012,
		},
		MinUSD: 100,
		MaxUSD: 3000,
	}
}

// Price parses s with the default table
func Price(s string) (int, bool) {
	return DefaultPriceTable().Parse(s)
}

// Parse returns the price in whole US dollars. USD values are truncated
// and converted values are rounded. Anything below one dollar is unknown.
// An untagged number is only accepted inside the [MinUSD, MaxUSD] band.
func (t PriceTable) Parse(s string) (int, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}

	for _, c := range currencyPatterns {
		for _, re := range c.patterns {
			m := re.FindStringSubmatch(s)
			if m == nil {
				continue
			}
			v, ok := parseAmount(m[1])
			if !ok {
				continue
			}
			if c.code == "USD" {
				return positive(int(v))
			}
			rate, ok := t.Rates[c.code]
			if !ok || rate <= 0 {
				break
			}
			return positive(int(math.Round(v * rate)))
		}
	}

	m := bareAmount.FindString(s)
	if m == "" {
		return 0, false
	}
	v, ok := parseAmount(m)
	if !ok {
		return 0, false
	}
	usd := int(v)
	if usd < t.MinUSD || usd > t.MaxUSD {
		return 0, false
	}
	return usd, true
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v > math.MaxInt32 {
		return 0, false
	}
	return v, true
}

func positive(usd int) (int, bool) {
	if usd <= 0 {
		return 0, false
	}
	return usd, true
}
