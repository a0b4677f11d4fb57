package adapters

import (
	"regexp"

	"github.com/ppiankov/phonespec/internal/extract"
	"github.com/ppiankov/phonespec/internal/model"
)

var rupeePattern = regexp.MustCompile(`₹\s*[\d,]+`)

// Mobiles91Adapter reads 91mobiles spec pages, usually delivered as markdown tables
type Mobiles91Adapter struct{}

// NewMobiles91Adapter creates a new 91mobiles adapter
func NewMobiles91Adapter() *Mobiles91Adapter {
	return &Mobiles91Adapter{}
}

// Name returns the adapter name
func (a *Mobiles91Adapter) Name() string {
	return "91mobiles"
}

// CanHandle checks if this is a 91mobiles URL
func (a *Mobiles91Adapter) CanHandle(rawURL string, contentType string) bool {
	return hostMatches(rawURL, "91mobiles.com")
}

// Rules returns label rules; a few labels repeat across sections and are scoped
func (a *Mobiles91Adapter) Rules() extract.RuleSet {
	return extract.RuleSet{
		{Field: model.FieldPhoneName, Labels: []string{extract.TitleLabel}, Transform: trimTitle},

		{Field: model.FieldNetworkTechnology, Labels: []string{"Network Support", "Network"}},
		{Field: model.FieldAnnounced, Labels: []string{"Launch Date", "Announced", "Release Date"}, Transform: monthFirstDate},
		{Field: model.FieldSIM, Labels: []string{"SIM Slots", "SIM Slot", "SIM Type"}},
		{Field: model.FieldOS, Labels: []string{"Operating System", "OS"}},

		{Field: model.FieldChipset, Labels: []string{"Chipset", "Processor"}},
		{Field: model.FieldCPU, Labels: []string{"CPU"}},
		{Field: model.FieldGPU, Labels: []string{"Graphics", "GPU"}},
		{Field: model.FieldRAM, Labels: []string{"RAM"}},
		{Field: model.FieldInternalStorage, Labels: []string{"Internal Memory", "Internal Storage"}},
		{Field: model.FieldCardSlot, Labels: []string{"Expandable Memory", "Expandable Storage"}},

		{Field: model.FieldDisplaySize, Labels: []string{"Screen Size", "Display"}, Pattern: inchPattern},
		{Field: model.FieldDisplayType, Section: "Display", Labels: []string{"Display Type", "Type"}},
		{Field: model.FieldDisplayResolution, Labels: []string{"Screen Resolution", "Resolution"}},
		{Field: model.FieldDisplayProtection, Labels: []string{"Screen Protection", "Protection"}},
		{Field: model.FieldDisplayRefreshRate, Labels: []string{"Refresh Rate"}},

		{Field: model.FieldWeight, Labels: []string{"Weight"}},
		{Field: model.FieldBuild, Labels: []string{"Build Material", "Build"}},
		{Field: model.FieldColors, Labels: []string{"Colours", "Colors", "Colour", "Color"}},

		{Field: model.FieldMainCamera, Labels: []string{"Rear Camera", "Main Camera", "Camera Setup"}},
		{Field: model.FieldSelfieCamera, Labels: []string{"Front Camera", "Selfie Camera"}},
		{Field: model.FieldCameraFeatures, Labels: []string{"Camera Features"}},
		{Field: model.FieldCameraVideo, Labels: []string{"Video Recording"}},

		{Field: model.FieldBatteryCapacity, Labels: []string{"Battery Capacity", "Capacity", "Battery"}, Pattern: mahPattern},
		{Field: model.FieldBatteryCharging, Labels: []string{"Quick Charging", "Fast Charging", "Charging Speed"}},

		{Field: model.FieldWLAN, Labels: []string{"Wi-Fi", "WiFi", "WLAN"}},
		{Field: model.FieldBluetooth, Labels: []string{"Bluetooth"}},
		{Field: model.FieldPositioning, Labels: []string{"GPS", "Positioning"}},
		{Field: model.FieldNFC, Labels: []string{"NFC"}},
		{Field: model.FieldUSB, Labels: []string{"USB Connectivity", "USB"}},
		{Field: model.FieldLoudspeaker, Labels: []string{"Loudspeaker"}},
		{Field: model.FieldAudioJack, Labels: []string{"Audio Jack", "3.5mm Jack"}},
		{Field: model.FieldSensors, Labels: []string{"Other Sensors", "Sensors"}},

		{Field: model.FieldPrice, Labels: []string{"Price", "Expected Price"}, Pattern: rupeePattern},
	}
}
