package fusion

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiGenerator calls the Gemini API in JSON response mode.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Generate(ctx context.Context, r Request) (string, error) {
	model := r.Model
	if model == "" {
		model = g.model
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(r.Temperature),
		ResponseMIMEType: "application/json",
	}
	if r.MaxTokens > 0 {
		config.MaxOutputTokens = int32(r.MaxTokens)
	}
	if r.System != "" {
		config.SystemInstruction = genai.NewContentFromText(r.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(r.User), config)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("no text in gemini response")
	}
	return text, nil
}

// classifyGeminiError marks rate limits and server-side failures as transient.
func classifyGeminiError(err error) error {
	err = fmt.Errorf("gemini api: %w", err)
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}
	if code == 429 || code >= 500 {
		return Transient(err)
	}
	return err
}
