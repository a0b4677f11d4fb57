package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/phonespec/internal/model"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phonespec", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Phonespec configuration") {
		t.Error("missing header")
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("config is not valid YAML: %v", err)
	}
	for _, section := range []string{"http", "rate_limiting", "validation", "images", "database"} {
		if _, ok := parsed[section]; !ok {
			t.Errorf("missing section %q", section)
		}
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("second write should refuse to overwrite")
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rate_limiting:
  delay: 2s
database:
  dsn: postgres://localhost/phones
validation:
  battery_max: 9000
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	c, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	defaults := model.DefaultConfig()
	if c.RateLimiting.Delay != 2*time.Second {
		t.Errorf("delay = %v, want 2s", c.RateLimiting.Delay)
	}
	if c.Database.DSN != "postgres://localhost/phones" {
		t.Errorf("dsn = %q", c.Database.DSN)
	}
	if c.Validation.BatteryMax != 9000 {
		t.Errorf("battery_max = %d, want 9000", c.Validation.BatteryMax)
	}
	if c.Validation.BatteryMin != defaults.Validation.BatteryMin {
		t.Errorf("battery_min = %d, want default %d", c.Validation.BatteryMin, defaults.Validation.BatteryMin)
	}
	if c.RateLimiting.SourceGap != defaults.RateLimiting.SourceGap {
		t.Errorf("source_gap = %v, want default", c.RateLimiting.SourceGap)
	}
	if len(c.Validation.BrandRules) != len(defaults.Validation.BrandRules) {
		t.Errorf("brand rules = %d, want %d", len(c.Validation.BrandRules), len(defaults.Validation.BrandRules))
	}
}
