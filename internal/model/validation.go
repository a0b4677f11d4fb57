package model

import "strings"

// Rule names reported in validation outcomes
const (
	RuleChipset = "chipset"
	RuleDisplay = "display"
	RuleBattery = "battery"
)

// Outcome is the result of a single validation rule
type Outcome struct {
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"` // Always set when Passed is false
	Note   string `json:"note,omitempty"`   // Informational, never affects Passed
}

// ValidationResult is the per-record validation outcome
type ValidationResult struct {
	Valid    bool      `json:"valid"`
	Outcomes []Outcome `json:"outcomes"`
}

// Reason joins the reasons of every failed rule
func (v ValidationResult) Reason() string {
	var reasons []string
	for _, o := range v.Outcomes {
		if !o.Passed && o.Reason != "" {
			reasons = append(reasons, o.Reason)
		}
	}
	return strings.Join(reasons, "; ")
}

// Outcome returns the outcome for a rule name
func (v ValidationResult) Outcome(rule string) (Outcome, bool) {
	for _, o := range v.Outcomes {
		if o.Rule == rule {
			return o, true
		}
	}
	return Outcome{}, false
}
