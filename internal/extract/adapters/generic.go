package adapters

import (
	"regexp"

	"github.com/ppiankov/phonespec/internal/extract"
	"github.com/ppiankov/phonespec/internal/model"
)

var (
	inchPattern = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:inch(?:es)?|")`)
	mahPattern  = regexp.MustCompile(`(?i)\d[\d,]*\s*mAh`)
	hzPattern   = regexp.MustCompile(`(?i)\d+\s*Hz`)
)

// GenericAdapter is the fallback adapter for unknown sites.
// It matches the label spellings most spec tables share.
type GenericAdapter struct{}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(url string, contentType string) bool {
	return true
}

// Rules returns label-only rules without section scoping
func (a *GenericAdapter) Rules() extract.RuleSet {
	return extract.RuleSet{
		{Field: model.FieldPhoneName, Labels: []string{"Model", "Model Name", "Name"}},
		{Field: model.FieldPhoneName, Labels: []string{extract.TitleLabel}, Transform: trimTitle},
		{Field: model.FieldChipset, Labels: []string{"Chipset", "Processor", "SoC"}},
		{Field: model.FieldDisplaySize, Labels: []string{"Screen Size", "Display Size", "Size", "Display", "Screen"}, Pattern: inchPattern},
		{Field: model.FieldBatteryCapacity, Labels: []string{"Battery Capacity", "Capacity", "Battery", "Type"}, Pattern: mahPattern},
		{Field: model.FieldDisplayType, Labels: []string{"Display Type", "Screen Type"}},
		{Field: model.FieldDisplayResolution, Labels: []string{"Resolution", "Screen Resolution"}},
		{Field: model.FieldDisplayRefreshRate, Labels: []string{"Refresh Rate"}, Pattern: hzPattern},
		{Field: model.FieldOS, Labels: []string{"OS", "Operating System"}},
		{Field: model.FieldCPU, Labels: []string{"CPU"}},
		{Field: model.FieldGPU, Labels: []string{"GPU", "Graphics"}},
		{Field: model.FieldRAM, Labels: []string{"RAM", "Memory"}},
		{Field: model.FieldInternalStorage, Labels: []string{"Storage", "Internal", "Internal Storage", "Internal Memory"}},
		{Field: model.FieldCardSlot, Labels: []string{"Card slot", "Expandable Memory", "Expandable Storage"}},
		{Field: model.FieldMainCamera, Labels: []string{"Main Camera", "Rear Camera"}},
		{Field: model.FieldSelfieCamera, Labels: []string{"Selfie Camera", "Front Camera"}},
		{Field: model.FieldWeight, Labels: []string{"Weight"}},
		{Field: model.FieldDimensions, Labels: []string{"Dimensions"}},
		{Field: model.FieldNFC, Labels: []string{"NFC"}},
		{Field: model.FieldAudioJack, Labels: []string{"3.5mm jack", "Audio Jack", "Headphone Jack"}},
		{Field: model.FieldNetworkTechnology, Labels: []string{"Technology", "Network"}},
		{Field: model.FieldAnnounced, Labels: []string{"Announced", "Launch Date", "Release Date"}, Transform: monthFirstDate},
		{Field: model.FieldStatus, Labels: []string{"Status"}},
		{Field: model.FieldPrice, Labels: []string{"Price"}},
		{Field: model.FieldColors, Labels: []string{"Colors", "Colours"}},
	}
}
