package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/phonespec/internal/model"
)

var (
	inchPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:inch|")`)
	mahPattern  = regexp.MustCompile(`(?i)(\d[\d,]*)\s*mAh`)
)

// DisplayInches returns the number before "inch" or a double quote
func DisplayInches(s string) (float64, bool) {
	m := inchPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BatteryMAh returns the integer before "mAh"
func BatteryMAh(s string) (int, bool) {
	m := mahPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseTristate reads a yes/no answer from free text. Any other
// informative value (e.g. "microSDXC (dedicated slot)") counts as yes.
func ParseTristate(s string) model.Tristate {
	v := strings.ToLower(strings.TrimSpace(s))
	if model.IsPlaceholder(v) || v == "unspecified" {
		return model.TriUnknown
	}
	switch {
	case strings.HasPrefix(v, "yes"):
		return model.TriYes
	case v == "no", v == "none", strings.HasPrefix(v, "no "), strings.HasPrefix(v, "no,"), strings.HasPrefix(v, "not "):
		return model.TriNo
	}
	return model.TriYes
}

// Has5G derives 5G support from the network fields
func Has5G(technology, bands string) model.Tristate {
	if strings.Contains(strings.ToUpper(technology), "5G") {
		return model.TriYes
	}
	if !model.IsPlaceholder(bands) && ParseTristate(bands) == model.TriYes {
		return model.TriYes
	}
	if !model.IsPlaceholder(technology) {
		return model.TriNo
	}
	return model.TriUnknown
}
