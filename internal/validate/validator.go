package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/phonespec/internal/model"
	"github.com/ppiankov/phonespec/internal/normalize"
)

// Validator applies brand/chipset consistency and physical plausibility rules
type Validator struct {
	rules      map[string]model.BrandRule // Keyed by lowercase brand
	displayMin float64
	displayMax float64
	batteryMin int
	batteryMax int
}

// NewValidator creates a validator from configuration. Zero bounds fall back to the defaults.
func NewValidator(cfg model.ValidationConfig) *Validator {
	def := model.DefaultConfig().Validation
	if cfg.BrandRules == nil {
		cfg.BrandRules = def.BrandRules
	}
	if cfg.DisplayMin == 0 && cfg.DisplayMax == 0 {
		cfg.DisplayMin, cfg.DisplayMax = def.DisplayMin, def.DisplayMax
	}
	if cfg.BatteryMin == 0 && cfg.BatteryMax == 0 {
		cfg.BatteryMin, cfg.BatteryMax = def.BatteryMin, def.BatteryMax
	}

	rules := make(map[string]model.BrandRule, len(cfg.BrandRules))
	for brand, rule := range cfg.BrandRules {
		rules[strings.ToLower(strings.TrimSpace(brand))] = rule
	}

	return &Validator{
		rules:      rules,
		displayMin: cfg.DisplayMin,
		displayMax: cfg.DisplayMax,
		batteryMin: cfg.BatteryMin,
		batteryMax: cfg.BatteryMax,
	}
}

// Validate runs every rule in order: chipset, display, battery.
// All rules always run so the result carries every failure reason.
func (v *Validator) Validate(brand string, rec *model.NormalizedRecord) model.ValidationResult {
	if rec == nil {
		rec = &model.NormalizedRecord{}
	}

	outcomes := []model.Outcome{
		v.CheckChipset(brand, rec.Chipset, rec.ExpectedChipset),
		v.checkDisplay(rec.Spec(model.FieldDisplaySize), rec.DisplayInch),
		v.checkBattery(rec.Spec(model.FieldBatteryCapacity), rec.BatteryMAh),
	}

	valid := true
	for _, o := range outcomes {
		if !o.Passed {
			valid = false
		}
	}

	return model.ValidationResult{Valid: valid, Outcomes: outcomes}
}

// HasRule reports whether a chipset rule exists for the brand
func (v *Validator) HasRule(brand string) bool {
	_, ok := v.rules[strings.ToLower(strings.TrimSpace(brand))]
	return ok
}

// CheckChipset matches the chipset against the brand's keyword sets (case-insensitive substrings)
func (v *Validator) CheckChipset(brand, chipset, expected string) model.Outcome {
	out := model.Outcome{Rule: model.RuleChipset}

	rule, ok := v.rules[strings.ToLower(strings.TrimSpace(brand))]
	if !ok {
		out.Reason = fmt.Sprintf("%v %s", model.ErrNoRule, brand)
		return out
	}

	if strings.TrimSpace(chipset) == "" {
		out.Reason = "No chipset"
		return out
	}

	lower := strings.ToLower(chipset)
	for _, kw := range rule.MustNotContain {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			out.Reason = fmt.Sprintf("Chipset %q contains invalid keyword %q for %s", chipset, kw, brand)
			return out
		}
	}

	matched := len(rule.MustContain) == 0
	for _, kw := range rule.MustContain {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			matched = true
			break
		}
	}
	if !matched {
		out.Reason = fmt.Sprintf("Chipset %q doesn't match expected patterns for %s", chipset, brand)
		return out
	}

	out.Passed = true
	if strings.TrimSpace(expected) != "" {
		out.Note = fmt.Sprintf("matches expected: %t", matchesExpected(lower, expected))
	}
	return out
}

// matchesExpected reports whether any keyword longer than two characters
// of the operator hint appears in the chipset
func matchesExpected(chipsetLower, expected string) bool {
	for _, kw := range strings.Fields(strings.ToLower(expected)) {
		if len(kw) > 2 && strings.Contains(chipsetLower, kw) {
			return true
		}
	}
	return false
}

// CheckDisplay validates a raw display size string
func (v *Validator) CheckDisplay(raw string) model.Outcome {
	return v.checkDisplay(raw, nil)
}

func (v *Validator) checkDisplay(raw string, parsed *float64) model.Outcome {
	out := model.Outcome{Rule: model.RuleDisplay}

	size, ok := 0.0, false
	if parsed != nil {
		size, ok = *parsed, true
	} else if raw != "" {
		size, ok = normalize.DisplayInches(raw)
	}

	switch {
	case !ok && strings.TrimSpace(raw) == "":
		out.Reason = "No display size"
	case !ok:
		out.Reason = fmt.Sprintf("Cannot parse display size from %q", raw)
	case size < v.displayMin || size > v.displayMax:
		out.Reason = fmt.Sprintf("Display size %s\" is outside phone range (%s-%s\")",
			formatFloat(size), formatFloat(v.displayMin), formatFloat(v.displayMax))
	default:
		out.Passed = true
	}
	return out
}

// CheckBattery validates a raw battery capacity string
func (v *Validator) CheckBattery(raw string) model.Outcome {
	return v.checkBattery(raw, nil)
}

func (v *Validator) checkBattery(raw string, parsed *int) model.Outcome {
	out := model.Outcome{Rule: model.RuleBattery}

	mah, ok := 0, false
	if parsed != nil {
		mah, ok = *parsed, true
	} else if raw != "" {
		mah, ok = normalize.BatteryMAh(raw)
	}

	switch {
	case !ok && strings.TrimSpace(raw) == "":
		out.Reason = "No battery capacity"
	case !ok:
		out.Reason = fmt.Sprintf("Cannot parse battery capacity from %q", raw)
	case mah < v.batteryMin || mah > v.batteryMax:
		out.Reason = fmt.Sprintf("Battery %dmAh is outside phone range (%d-%dmAh)", mah, v.batteryMin, v.batteryMax)
	default:
		out.Passed = true
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
