package model

import "time"

// Config is the complete phonespec configuration
type Config struct {
	HTTP         HTTPConfig       `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitConfig  `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig      `yaml:"cache" mapstructure:"cache"`
	LLM          LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Extraction   ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Normalize    NormalizeConfig  `yaml:"normalize" mapstructure:"normalize"`
	Validation   ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Images       ImageConfig      `yaml:"images" mapstructure:"images"`
	Database     DatabaseConfig   `yaml:"database" mapstructure:"database"`
	Checkpoint   CheckpointConfig `yaml:"checkpoint" mapstructure:"checkpoint"`
	Output       OutputConfig     `yaml:"output" mapstructure:"output"`
	Log          LogConfig        `yaml:"log" mapstructure:"log"`
	Metrics      MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
}

// HTTPConfig controls page fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"` // Per fetch
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// RateLimitConfig controls pacing between external requests
type RateLimitConfig struct {
	Delay         time.Duration `yaml:"delay" mapstructure:"delay"`                   // Minimum interval between fetches to one host
	SourceGap     time.Duration `yaml:"source_gap" mapstructure:"source_gap"`         // Pause between the two sources in comparison mode
	ProbeInterval time.Duration `yaml:"probe_interval" mapstructure:"probe_interval"` // Minimum interval between image probes to one host
	ItemTimeout   time.Duration `yaml:"item_timeout" mapstructure:"item_timeout"`     // Upper bound for one item including writes
}

// CacheConfig controls the fetched-page cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// LLMConfig configures the schema-guided extraction backend
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, or "" for disabled
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// Extraction strategies
const (
	StrategyPattern = "pattern"
	StrategySchema  = "schema"
)

// ExtractionConfig selects and tunes the field extractor
type ExtractionConfig struct {
	Strategy     string `yaml:"strategy" mapstructure:"strategy"`
	Instructions string `yaml:"instructions" mapstructure:"instructions"`
	MaxChars     int    `yaml:"max_chars" mapstructure:"max_chars"` // Page text sent to the backend
}

// NormalizeConfig holds conversion tables
type NormalizeConfig struct {
	FXRates     map[string]float64 `yaml:"fx_rates" mapstructure:"fx_rates"` // Currency code to USD
	PriceMinUSD int                `yaml:"price_min_usd" mapstructure:"price_min_usd"`
	PriceMaxUSD int                `yaml:"price_max_usd" mapstructure:"price_max_usd"`
	DefaultDay  int                `yaml:"default_day" mapstructure:"default_day"`
}

// BrandRule lists chipset keywords for one brand
type BrandRule struct {
	MustContain    []string `yaml:"must_contain" mapstructure:"must_contain"`
	MustNotContain []string `yaml:"must_not_contain" mapstructure:"must_not_contain"`
}

// ValidationConfig holds plausibility bounds and brand rules
type ValidationConfig struct {
	DisplayMin float64              `yaml:"display_min" mapstructure:"display_min"`
	DisplayMax float64              `yaml:"display_max" mapstructure:"display_max"`
	BatteryMin int                  `yaml:"battery_min" mapstructure:"battery_min"`
	BatteryMax int                  `yaml:"battery_max" mapstructure:"battery_max"`
	BrandRules map[string]BrandRule `yaml:"brand_rules" mapstructure:"brand_rules"`
}

// ImageConfig drives image resolution
type ImageConfig struct {
	HighResMarker    string            `yaml:"high_res_marker" mapstructure:"high_res_marker"`
	LowResMarker     string            `yaml:"low_res_marker" mapstructure:"low_res_marker"`
	HighThreshold    float64           `yaml:"high_threshold" mapstructure:"high_threshold"`
	LowThreshold     float64           `yaml:"low_threshold" mapstructure:"low_threshold"`
	HighTemplate     string            `yaml:"high_template" mapstructure:"high_template"` // {folder} and {slug} placeholders
	LowTemplate      string            `yaml:"low_template" mapstructure:"low_template"`
	BrandFolders     map[string]string `yaml:"brand_folders" mapstructure:"brand_folders"`
	ProbeConcurrency int               `yaml:"probe_concurrency" mapstructure:"probe_concurrency"`
}

// DatabaseConfig configures the PostgreSQL pool
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" mapstructure:"dsn"`
	MaxConns        int32         `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns        int32         `yaml:"min_conns" mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" mapstructure:"max_conn_idle_time"`
}

// CheckpointConfig configures the resume ledger
type CheckpointConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig controls report files
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LogConfig configures slog
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
}

// MetricsConfig controls the Prometheus textfile dump
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	TextfilePath string `yaml:"textfile_path" mapstructure:"textfile_path"`
}

// DefaultInstructions tell the extraction backend which phone to read
const DefaultInstructions = `Only extract data for the MAIN phone shown on the page (the one in the title).
Do NOT extract data from "Related phones", "Compare", or advertisement sections.
The chipset MUST match the phone in the page title.
If you see multiple phones on the page, only extract data for the one matching the page title.`

// DefaultBrandRules mirrors the chipset vocabulary of the supported brands
func DefaultBrandRules() map[string]BrandRule {
	qualcommMediatek := BrandRule{
		MustContain:    []string{"Snapdragon", "Dimensity"},
		MustNotContain: []string{"Apple", "Tensor", "Exynos", "Kirin"},
	}
	qualcommOnly := BrandRule{
		MustContain:    []string{"Snapdragon"},
		MustNotContain: []string{"Apple", "Tensor", "Exynos", "Kirin", "Helio"},
	}

	return map[string]BrandRule{
		"apple": {
			MustContain:    []string{"Apple", "A1", "A2", "Bionic"},
			MustNotContain: []string{"Snapdragon", "Exynos", "Dimensity", "Tensor", "Helio", "Kirin", "Unisoc"},
		},
		"samsung": {
			MustContain:    []string{"Snapdragon", "Exynos"},
			MustNotContain: []string{"Apple", "Tensor", "Kirin", "Helio", "Unisoc"},
		},
		"google": {
			MustContain:    []string{"Tensor"},
			MustNotContain: []string{"Snapdragon", "Apple", "Exynos", "Dimensity", "Helio", "Kirin"},
		},
		"oneplus": {
			MustContain:    []string{"Snapdragon", "Dimensity"},
			MustNotContain: []string{"Apple", "Tensor", "Exynos", "Kirin", "Helio", "Unisoc"},
		},
		"xiaomi":   qualcommMediatek,
		"motorola": qualcommMediatek,
		"oppo":     qualcommMediatek,
		"vivo":     qualcommMediatek,
		"asus":     qualcommOnly,
		"sony":     qualcommOnly,
		"nothing":  qualcommOnly,
	}
}

// DefaultBrandFolders maps brand names to image folder names
func DefaultBrandFolders() map[string]string {
	return map[string]string{
		"samsung":  "samsung",
		"apple":    "apple",
		"google":   "google",
		"oneplus":  "oneplus",
		"xiaomi":   "xiaomi",
		"nothing":  "nothing",
		"motorola": "motorola",
		"oppo":     "oppo",
		"vivo":     "vivo",
		"asus":     "asus",
		"sony":     "sony",
		"huawei":   "huawei",
		"realme":   "realme",
	}
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "phonespec/0.3 (+https://github.com/ppiankov/phonespec)",
			MaxBodyBytes:  4_000_000,
			RespectRobots: true,
		},
		RateLimiting: RateLimitConfig{
			Delay:         6 * time.Second,
			SourceGap:     3 * time.Second,
			ProbeInterval: 100 * time.Millisecond,
			ItemTimeout:   2 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".phonespec-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   60,
			MaxTokens: 2000,
		},
		Extraction: ExtractionConfig{
			Strategy:     StrategyPattern,
			Instructions: DefaultInstructions,
			MaxChars:     60_000,
		},
		Normalize: NormalizeConfig{
			FXRates: map[string]float64{
				"USD": 1,
				"EUR": 1.08,
				"GBP": 1.27,
				"INR": 0.012,
			},
			PriceMinUSD: 100,
			PriceMaxUSD: 3000,
			DefaultDay:  15,
		},
		Validation: ValidationConfig{
			DisplayMin: 4.0,
			DisplayMax: 8.5,
			BatteryMin: 2000,
			BatteryMax: 7500,
			BrandRules: DefaultBrandRules(),
		},
		Images: ImageConfig{
			HighResMarker:    "/vv/pics/",
			LowResMarker:     "/vv/bigpic/",
			HighThreshold:    0.6,
			LowThreshold:     0.7,
			HighTemplate:     "https://fdn2.gsmarena.com/vv/pics/{folder}/{slug}-1.jpg",
			LowTemplate:      "https://fdn2.gsmarena.com/vv/bigpic/{slug}.jpg",
			BrandFolders:     DefaultBrandFolders(),
			ProbeConcurrency: 3,
		},
		Database: DatabaseConfig{
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 10 * time.Minute,
		},
		Checkpoint: CheckpointConfig{
			Path: ".phonespec-checkpoint.db",
		},
		Output: OutputConfig{
			Dir: "./phonespec-output",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:      false,
			TextfilePath: "./phonespec-output/phonespec.prom",
		},
	}
}
