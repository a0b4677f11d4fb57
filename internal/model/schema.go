package model

// Category groups specification fields into the documents stored per product
type Category string

const (
	CategoryNetwork      Category = "network"
	CategoryLaunch       Category = "launch"
	CategoryBody         Category = "body"
	CategoryDisplay      Category = "display"
	CategoryPlatform     Category = "platform"
	CategoryMemory       Category = "memory"
	CategoryCamera       Category = "camera"
	CategoryBattery      Category = "battery"
	CategoryConnectivity Category = "connectivity"
	CategorySensors      Category = "sensors"
	CategoryAudio        Category = "audio"
	CategoryPricing      Category = "pricing"
)

// Categories lists every category in storage column order
var Categories = []Category{
	CategoryNetwork,
	CategoryLaunch,
	CategoryBody,
	CategoryDisplay,
	CategoryPlatform,
	CategoryMemory,
	CategoryCamera,
	CategoryBattery,
	CategoryConnectivity,
	CategorySensors,
	CategoryAudio,
	CategoryPricing,
}

// Canonical field names shared by every extraction strategy
const (
	FieldPhoneName          = "phone_name"
	FieldNetworkTechnology  = "network_technology"
	FieldNetwork5GBands     = "network_5g_bands"
	FieldAnnounced          = "announced"
	FieldStatus             = "status"
	FieldDimensions         = "dimensions"
	FieldWeight             = "weight"
	FieldBuild              = "build"
	FieldSIM                = "sim"
	FieldColors             = "colors"
	FieldDisplayType        = "display_type"
	FieldDisplaySize        = "display_size"
	FieldDisplayResolution  = "display_resolution"
	FieldDisplayProtection  = "display_protection"
	FieldDisplayRefreshRate = "display_refresh_rate"
	FieldOS                 = "os"
	FieldChipset            = "chipset"
	FieldCPU                = "cpu"
	FieldGPU                = "gpu"
	FieldRAM                = "ram"
	FieldInternalStorage    = "internal_storage"
	FieldCardSlot           = "card_slot"
	FieldMainCamera         = "main_camera"
	FieldCameraFeatures     = "camera_features"
	FieldCameraVideo        = "camera_video"
	FieldSelfieCamera       = "selfie_camera"
	FieldBatteryCapacity    = "battery_capacity"
	FieldBatteryCharging    = "battery_charging"
	FieldWLAN               = "wlan"
	FieldBluetooth          = "bluetooth"
	FieldPositioning        = "positioning"
	FieldNFC                = "nfc"
	FieldUSB                = "usb"
	FieldSensors            = "sensors"
	FieldLoudspeaker        = "loudspeaker"
	FieldAudioJack          = "audio_jack"
	FieldPrice              = "price"
)

// FieldSpec describes one expected field for schema-guided extraction
type FieldSpec struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
}

// Schema is an ordered list of expected fields
type Schema []FieldSpec

// Required returns the names of required fields
func (s Schema) Required() []string {
	var names []string
	for _, f := range s {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// CategoryOf returns the category of a field and whether the field is known
func (s Schema) CategoryOf(name string) (Category, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Category, true
		}
	}
	return "", false
}

// PhoneSchema is the field schema for a single phone specification page
var PhoneSchema = Schema{
	{FieldPhoneName, "", "Exact phone model name as shown in the page title", true},
	{FieldNetworkTechnology, CategoryNetwork, "Network technologies, e.g. GSM / HSPA / LTE / 5G", false},
	{FieldNetwork5GBands, CategoryNetwork, "Supported 5G bands", false},
	{FieldAnnounced, CategoryLaunch, "Announcement date, e.g. 2024, January 17", false},
	{FieldStatus, CategoryLaunch, "Availability status, e.g. Available. Released 2024, January 24", false},
	{FieldDimensions, CategoryBody, "Phone dimensions", false},
	{FieldWeight, CategoryBody, "Phone weight", false},
	{FieldBuild, CategoryBody, "Build materials", false},
	{FieldSIM, CategoryBody, "SIM type", false},
	{FieldColors, CategoryBody, "Color options", false},
	{FieldDisplayType, CategoryDisplay, "Display technology", false},
	{FieldDisplaySize, CategoryDisplay, "Screen size in inches", true},
	{FieldDisplayResolution, CategoryDisplay, "Screen resolution", false},
	{FieldDisplayProtection, CategoryDisplay, "Screen protection", false},
	{FieldDisplayRefreshRate, CategoryDisplay, "Refresh rate", false},
	{FieldOS, CategoryPlatform, "Operating system", false},
	{FieldChipset, CategoryPlatform, "Processor or SoC of this phone", true},
	{FieldCPU, CategoryPlatform, "CPU details", false},
	{FieldGPU, CategoryPlatform, "GPU details", false},
	{FieldRAM, CategoryMemory, "RAM options", false},
	{FieldInternalStorage, CategoryMemory, "Storage options", false},
	{FieldCardSlot, CategoryMemory, "Memory card slot", false},
	{FieldMainCamera, CategoryCamera, "Main camera specs", false},
	{FieldCameraFeatures, CategoryCamera, "Camera features", false},
	{FieldCameraVideo, CategoryCamera, "Video recording", false},
	{FieldSelfieCamera, CategoryCamera, "Front camera specs", false},
	{FieldBatteryCapacity, CategoryBattery, "Battery capacity in mAh", true},
	{FieldBatteryCharging, CategoryBattery, "Charging speed", false},
	{FieldWLAN, CategoryConnectivity, "WiFi standards", false},
	{FieldBluetooth, CategoryConnectivity, "Bluetooth version", false},
	{FieldPositioning, CategoryConnectivity, "GPS and positioning systems", false},
	{FieldNFC, CategoryConnectivity, "NFC support", false},
	{FieldUSB, CategoryConnectivity, "USB type", false},
	{FieldSensors, CategorySensors, "Sensors list", false},
	{FieldLoudspeaker, CategoryAudio, "Loudspeaker", false},
	{FieldAudioJack, CategoryAudio, "3.5mm headphone jack", false},
	{FieldPrice, CategoryPricing, "Price", false},
}
