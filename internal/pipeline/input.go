package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/phonespec/internal/model"
)

// ReadDescriptors loads descriptors from a YAML file (.yaml/.yml) or a line file
func ReadDescriptors(filePath string) ([]model.Descriptor, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return ParseDescriptorsYAML(file)
	default:
		return ParseDescriptorLines(file)
	}
}

// ParseDescriptorsYAML reads a YAML list of descriptors, or a document with a "products" list
func ParseDescriptorsYAML(r io.Reader) ([]model.Descriptor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read descriptors: %w", err)
	}

	var list []model.Descriptor
	if err := yaml.Unmarshal(data, &list); err != nil {
		var doc struct {
			Products []model.Descriptor `yaml:"products"`
		}
		if derr := yaml.Unmarshal(data, &doc); derr != nil {
			return nil, fmt.Errorf("parse descriptors: %w", err)
		}
		list = doc.Products
	}

	return dedupe(list)
}

// ParseDescriptorLines reads "url | brand | expected chipset" lines.
// Blank lines and # comments are skipped; brand and chipset are optional.
func ParseDescriptorLines(r io.Reader) ([]model.Descriptor, error) {
	var list []model.Descriptor

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		d := model.Descriptor{URL: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			d.Brand = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			d.ExpectedChipset = strings.TrimSpace(parts[2])
		}
		list = append(list, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return dedupe(list)
}

func dedupe(list []model.Descriptor) ([]model.Descriptor, error) {
	out := make([]model.Descriptor, 0, len(list))
	seen := make(map[string]bool, len(list))
	for i, d := range list {
		d.URL = strings.TrimSpace(d.URL)
		if d.URL == "" {
			return nil, fmt.Errorf("descriptor %d: missing url", i+1)
		}
		if err := checkURL(d.URL); err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", i+1, err)
		}
		if d.GalleryURL != "" {
			if err := checkURL(d.GalleryURL); err != nil {
				return nil, fmt.Errorf("descriptor %d gallery: %w", i+1, err)
			}
		}
		if d.CompareURL != "" {
			if err := checkURL(d.CompareURL); err != nil {
				return nil, fmt.Errorf("descriptor %d compare: %w", i+1, err)
			}
		}
		if seen[d.URL] {
			continue
		}
		seen[d.URL] = true
		out = append(out, d)
	}
	return out, nil
}

// checkURL accepts absolute http(s) URLs with a host
func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("unsupported url %q", raw)
	}
	return nil
}
