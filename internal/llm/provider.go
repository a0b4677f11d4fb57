package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/phonespec/internal/model"
)

// Provider defines the interface for schema-guided extraction backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// ExtractFields returns a JSON object with one key per schema field
	ExtractFields(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the input for one extraction call
type ExtractRequest struct {
	// URL of the page the content came from
	URL string

	// Brand and ExpectedChipset disambiguate pages listing several phones
	Brand           string
	ExpectedChipset string

	// Content is the page text (already stripped of markup)
	Content string

	// Schema lists the fields to return
	Schema model.Schema

	// Instructions are appended to the prompt verbatim
	Instructions string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse contains the decoded JSON object
type ExtractResponse struct {
	Fields     map[string]any
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   60,
		MaxTokens: 2000,
	}
}

// SystemPrompt frames every extraction call
const SystemPrompt = "You extract phone specifications from web pages. Respond with a single JSON object and nothing else. Use null for fields the page does not state."

// ErrNoJSON means the response did not contain a JSON object
var ErrNoJSON = errors.New("no JSON object in response")

// BuildPrompt constructs the extraction prompt
func BuildPrompt(req ExtractRequest) string {
	var b strings.Builder

	b.WriteString("Extract the following fields for the phone on this page.\n\nFields (JSON keys):\n")
	for _, f := range req.Schema {
		required := ""
		if f.Required {
			required = " (required)"
		}
		fmt.Fprintf(&b, "- %s: %s%s\n", f.Name, f.Description, required)
	}

	if req.Brand != "" {
		fmt.Fprintf(&b, "\nThe phone brand is %s. The chipset must be one that %s actually ships.\n", req.Brand, req.Brand)
	}
	if req.ExpectedChipset != "" {
		fmt.Fprintf(&b, "The operator expects the chipset to be similar to %q.\n", req.ExpectedChipset)
	}
	if req.Instructions != "" {
		b.WriteString("\n")
		b.WriteString(req.Instructions)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nPage URL: %s\n\nPage content:\n%s\n", req.URL, req.Content)
	return b.String()
}

// ParseFields decodes the first JSON object found in text.
// Models sometimes wrap the object in prose or code fences.
func ParseFields(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}

func resolveModel(reqModel, cfgModel, fallback string) string {
	if reqModel != "" {
		return reqModel
	}
	if cfgModel != "" {
		return cfgModel
	}
	return fallback
}

func resolveMaxTokens(reqMax, cfgMax int) int {
	if reqMax > 0 {
		return reqMax
	}
	if cfgMax > 0 {
		return cfgMax
	}
	return 2000
}
