package fusion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultClaudeModel = "claude-sonnet-4-20250514"

// ClaudeGenerator calls the Anthropic Messages API. SDK-level retries are off;
// the Synthesizer owns the retry policy.
type ClaudeGenerator struct {
	client anthropic.Client
	model  string
}

func NewClaudeGenerator(apiKey, model string, opts ...option.RequestOption) (*ClaudeGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is required for the claude provider")
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &ClaudeGenerator{client: anthropic.NewClient(opts...), model: model}, nil
}

func (g *ClaudeGenerator) Name() string { return "claude" }

func (g *ClaudeGenerator) Generate(ctx context.Context, r Request) (string, error) {
	model := r.Model
	if model == "" {
		model = g.model
	}
	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(r.User)),
		},
		Temperature: anthropic.Float(float64(r.Temperature)),
	}
	if r.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: r.System}}
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && (apiErr.StatusCode == 429 || apiErr.StatusCode >= 500) {
			return "", Transient(fmt.Errorf("claude api: %w", err))
		}
		return "", fmt.Errorf("claude api: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", errors.New("no text in claude response")
	}
	return out.String(), nil
}
