package fusion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3:instruct"
)

// OllamaGenerator talks to a local Ollama server through /api/generate. Calls are
// bounded by the caller's context.
type OllamaGenerator struct {
	URL    string
	Model  string
	NumCtx int
	client *http.Client
}

func NewOllamaGenerator(url, model string) *OllamaGenerator {
	if url == "" {
		url = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaGenerator{
		URL:    strings.TrimRight(url, "/"),
		Model:  model,
		NumCtx: 8192,
		client: &http.Client{},
	}
}

func (g *OllamaGenerator) Name() string { return "ollama" }

func (g *OllamaGenerator) Generate(ctx context.Context, r Request) (string, error) {
	model := strings.TrimPrefix(r.Model, "ollama/")
	if model == "" {
		model = g.Model
	}
	options := map[string]any{
		"temperature": r.Temperature,
		"num_ctx":     g.NumCtx,
	}
	if r.MaxTokens > 0 {
		options["num_predict"] = r.MaxTokens
	}
	reqBody := map[string]any{
		"model":   model,
		"system":  r.System,
		"prompt":  r.User,
		"format":  "json",
		"stream":  false,
		"options": options,
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL+"/api/generate", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", Transient(err)
		}
		return "", err
	}

	var raw struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return raw.Response, nil
}

// Ping checks that the server answers /api/tags within five seconds.
func (g *OllamaGenerator) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("ollama returned %d", resp.StatusCode)
	}
	return nil
}
