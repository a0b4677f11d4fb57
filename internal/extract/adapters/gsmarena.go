package adapters

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/ppiankov/phonespec/internal/extract"
	"github.com/ppiankov/phonespec/internal/model"
)

// gsmarenaPage matches product pages such as samsung_galaxy_s24_ultra-12771.php
var gsmarenaPage = regexp.MustCompile(`^([a-z0-9_+()]+)-(\d+)\.php$`)

var ramPattern = regexp.MustCompile(`(?i)(\d+\s*[GT]B)\s+RAM`)

// GSMArenaAdapter reads GSMArena spec tables: one table per section, row labels in td.ttl
type GSMArenaAdapter struct{}

// NewGSMArenaAdapter creates a new GSMArena adapter
func NewGSMArenaAdapter() *GSMArenaAdapter {
	return &GSMArenaAdapter{}
}

// Name returns the adapter name
func (a *GSMArenaAdapter) Name() string {
	return "gsmarena"
}

// CanHandle checks if this is a GSMArena URL
func (a *GSMArenaAdapter) CanHandle(rawURL string, contentType string) bool {
	return hostMatches(rawURL, "gsmarena.com")
}

// Rules returns the section-scoped rule table
func (a *GSMArenaAdapter) Rules() extract.RuleSet {
	return extract.RuleSet{
		{Field: model.FieldPhoneName, Labels: []string{extract.TitleLabel}, Transform: trimTitle},

		{Field: model.FieldNetworkTechnology, Section: "Network", Labels: []string{"Technology"}},
		{Field: model.FieldNetwork5GBands, Section: "Network", Labels: []string{"5G bands"}},

		{Field: model.FieldAnnounced, Section: "Launch", Labels: []string{"Announced"}},
		{Field: model.FieldStatus, Section: "Launch", Labels: []string{"Status"}},

		{Field: model.FieldDimensions, Section: "Body", Labels: []string{"Dimensions"}},
		{Field: model.FieldWeight, Section: "Body", Labels: []string{"Weight"}},
		{Field: model.FieldBuild, Section: "Body", Labels: []string{"Build"}},
		{Field: model.FieldSIM, Section: "Body", Labels: []string{"SIM"}},

		{Field: model.FieldDisplayType, Section: "Display", Labels: []string{"Type"}},
		{Field: model.FieldDisplaySize, Section: "Display", Labels: []string{"Size"}},
		{Field: model.FieldDisplayResolution, Section: "Display", Labels: []string{"Resolution"}},
		{Field: model.FieldDisplayProtection, Section: "Display", Labels: []string{"Protection"}},
		{Field: model.FieldDisplayRefreshRate, Section: "Display", Labels: []string{"Type"}, Pattern: hzPattern},

		{Field: model.FieldOS, Section: "Platform", Labels: []string{"OS"}},
		{Field: model.FieldChipset, Section: "Platform", Labels: []string{"Chipset"}},
		{Field: model.FieldCPU, Section: "Platform", Labels: []string{"CPU"}},
		{Field: model.FieldGPU, Section: "Platform", Labels: []string{"GPU"}},

		{Field: model.FieldCardSlot, Section: "Memory", Labels: []string{"Card slot"}},
		{Field: model.FieldInternalStorage, Section: "Memory", Labels: []string{"Internal"}},
		{Field: model.FieldRAM, Section: "Memory", Labels: []string{"Internal"}, Pattern: ramPattern},

		{Field: model.FieldMainCamera, Section: "Main Camera", Labels: []string{"Single", "Dual", "Triple", "Quad", "Penta"}},
		{Field: model.FieldCameraFeatures, Section: "Main Camera", Labels: []string{"Features"}},
		{Field: model.FieldCameraVideo, Section: "Main Camera", Labels: []string{"Video"}},
		{Field: model.FieldSelfieCamera, Section: "Selfie camera", Labels: []string{"Single", "Dual", "Triple"}},

		{Field: model.FieldLoudspeaker, Section: "Sound", Labels: []string{"Loudspeaker"}},
		{Field: model.FieldAudioJack, Section: "Sound", Labels: []string{"3.5mm jack"}},

		{Field: model.FieldWLAN, Section: "Comms", Labels: []string{"WLAN"}},
		{Field: model.FieldBluetooth, Section: "Comms", Labels: []string{"Bluetooth"}},
		{Field: model.FieldPositioning, Section: "Comms", Labels: []string{"Positioning", "GPS"}},
		{Field: model.FieldNFC, Section: "Comms", Labels: []string{"NFC"}},
		{Field: model.FieldUSB, Section: "Comms", Labels: []string{"USB"}},

		{Field: model.FieldSensors, Section: "Features", Labels: []string{"Sensors"}},

		{Field: model.FieldBatteryCapacity, Section: "Battery", Labels: []string{"Type"}, Pattern: mahPattern},
		{Field: model.FieldBatteryCharging, Section: "Battery", Labels: []string{"Charging"}},

		{Field: model.FieldColors, Section: "Misc", Labels: []string{"Colors"}},
		{Field: model.FieldPrice, Section: "Misc", Labels: []string{"Price"}},
	}
}

// NameFromURL turns samsung_galaxy_s24_ultra-12771.php into "Samsung Galaxy S24 Ultra"
func (a *GSMArenaAdapter) NameFromURL(pageURL string) string {
	slug, _, ok := gsmarenaSlug(pageURL)
	if !ok {
		return ""
	}
	words := strings.Fields(strings.ReplaceAll(slug, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// GalleryURL maps x-12771.php to x-pictures-12771.php. Picture pages themselves do not match.
func (a *GSMArenaAdapter) GalleryURL(pageURL string) (string, bool) {
	slug, id, ok := gsmarenaSlug(pageURL)
	if !ok {
		return "", false
	}
	u, _ := url.Parse(pageURL)
	u.Path = path.Join(path.Dir(u.Path), slug+"-pictures-"+id+".php")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), true
}

func gsmarenaSlug(pageURL string) (slug, id string, ok bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", "", false
	}
	m := gsmarenaPage.FindStringSubmatch(strings.ToLower(path.Base(u.Path)))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
