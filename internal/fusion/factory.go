package fusion

import (
	"context"
	"fmt"
	"strings"
)

// ProviderConfig selects and configures a Generator.
type ProviderConfig struct {
	Provider        string // claude, gemini, ollama, mock; empty infers from Model
	Model           string
	AnthropicAPIKey string
	GeminiAPIKey    string
	OllamaURL       string
}

// ModelProvider infers the provider from a model name, or returns "" when the
// name carries no recognizable prefix.
func ModelProvider(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "claude"):
		return "claude"
	case strings.HasPrefix(m, "gemini"):
		return "gemini"
	case strings.HasPrefix(m, "ollama/"):
		return "ollama"
	case m == "mock":
		return "mock"
	}
	return ""
}

// ResolveProvider returns the provider name, inferring it from the model name when
// Provider is empty.
func (c ProviderConfig) ResolveProvider() string {
	if p := strings.ToLower(strings.TrimSpace(c.Provider)); p != "" {
		return p
	}
	if p := ModelProvider(c.Model); p != "" {
		return p
	}
	return "claude"
}

// ResolveModel drops a model that belongs to another provider, so the
// generator falls back to its own default.
func (c ProviderConfig) ResolveModel() string {
	p := ModelProvider(c.Model)
	if p == "" || p == c.ResolveProvider() {
		return c.Model
	}
	return ""
}

func NewGenerator(ctx context.Context, c ProviderConfig) (Generator, error) {
	model := c.ResolveModel()
	switch c.ResolveProvider() {
	case "claude":
		return NewClaudeGenerator(c.AnthropicAPIKey, model)
	case "gemini":
		return NewGeminiGenerator(ctx, c.GeminiAPIKey, model)
	case "ollama":
		return NewOllamaGenerator(c.OllamaURL, strings.TrimPrefix(model, "ollama/")), nil
	case "mock":
		return MockGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", c.Provider)
	}
}
