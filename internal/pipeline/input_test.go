package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDescriptorLines(t *testing.T) {
	input := `# phones to ingest
https://www.gsmarena.com/samsung_galaxy_s24_ultra-12771.php | Samsung | Snapdragon 8 Gen 3

https://www.91mobiles.com/google-pixel-8-price-in-india | Google
https://www.gsmarena.com/samsung_galaxy_s24_ultra-12771.php | Samsung
https://example.com/phone
`
	list, err := ParseDescriptorLines(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 descriptors after dedupe, got %d", len(list))
	}
	if list[0].Brand != "Samsung" || list[0].ExpectedChipset != "Snapdragon 8 Gen 3" {
		t.Errorf("Unexpected first descriptor: %+v", list[0])
	}
	if list[1].Brand != "Google" || list[1].ExpectedChipset != "" {
		t.Errorf("Unexpected second descriptor: %+v", list[1])
	}
	if list[2].URL != "https://example.com/phone" || list[2].Brand != "" {
		t.Errorf("Unexpected third descriptor: %+v", list[2])
	}
}

func TestParseDescriptorLines_InvalidURL(t *testing.T) {
	if _, err := ParseDescriptorLines(strings.NewReader("ftp://example.com | Apple\n")); err == nil {
		t.Fatal("Expected error for non-http URL")
	}
}

func TestParseDescriptorLines_MalformedURL(t *testing.T) {
	tests := []string{
		"https://example.com/%zz | Samsung\n",
		"https:// | Samsung\n",
		"https://www.gsmarena.com/a.php | Samsung\nhttp://[::1 | Google\n",
	}
	for _, input := range tests {
		if _, err := ParseDescriptorLines(strings.NewReader(input)); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}

func TestParseDescriptorsYAML_MalformedGallery(t *testing.T) {
	input := `
- url: https://www.gsmarena.com/google_pixel_8-12546.php
  brand: Google
  gallery_url: "https://www.gsmarena.com/%zz"
`
	if _, err := ParseDescriptorsYAML(strings.NewReader(input)); err == nil {
		t.Fatal("Expected error for malformed gallery URL")
	}
}

func TestParseDescriptorsYAML(t *testing.T) {
	input := `
- url: https://www.gsmarena.com/apple_iphone_15_pro-12557.php
  brand: Apple
  expected_chipset: A17 Pro
  compare_url: https://www.91mobiles.com/apple-iphone-15-pro-price-in-india
- url: https://www.gsmarena.com/google_pixel_8-12546.php
  brand: Google
  gallery_url: https://www.gsmarena.com/google_pixel_8-pictures-12546.php
`
	list, err := ParseDescriptorsYAML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 descriptors, got %d", len(list))
	}
	if list[0].ExpectedChipset != "A17 Pro" || list[0].CompareURL == "" {
		t.Errorf("Unexpected first descriptor: %+v", list[0])
	}
	if list[1].GalleryURL != "https://www.gsmarena.com/google_pixel_8-pictures-12546.php" {
		t.Errorf("Unexpected gallery URL: %q", list[1].GalleryURL)
	}
}

func TestParseDescriptorsYAML_ProductsDocument(t *testing.T) {
	input := `
products:
  - url: https://www.gsmarena.com/google_pixel_8-12546.php
    brand: Google
`
	list, err := ParseDescriptorsYAML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].Brand != "Google" {
		t.Errorf("Unexpected descriptors: %+v", list)
	}
}

func TestParseDescriptorsYAML_MissingURL(t *testing.T) {
	if _, err := ParseDescriptorsYAML(strings.NewReader("- brand: Apple\n")); err == nil {
		t.Fatal("Expected error for missing url")
	}
}

func TestReadDescriptors_ByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "phones.yaml")
	if err := os.WriteFile(yamlPath, []byte("- url: https://example.com/a\n  brand: Apple\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	txtPath := filepath.Join(dir, "phones.txt")
	if err := os.WriteFile(txtPath, []byte("https://example.com/b | Google\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fromYAML, err := ReadDescriptors(yamlPath)
	if err != nil || len(fromYAML) != 1 || fromYAML[0].Brand != "Apple" {
		t.Errorf("YAML read: %+v, %v", fromYAML, err)
	}
	fromLines, err := ReadDescriptors(txtPath)
	if err != nil || len(fromLines) != 1 || fromLines[0].Brand != "Google" {
		t.Errorf("Line read: %+v, %v", fromLines, err)
	}

	if _, err := ReadDescriptors(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}
