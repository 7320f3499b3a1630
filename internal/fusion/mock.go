package fusion

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	requestMarker  = "My request: "
	requestTrailer = "\n\nGenerate a mind map that addresses my request."
)

// docMarker matches the "[filename]" header the corpus puts before each document.
var docMarker = regexp.MustCompile(`(?m)^\[([^\]\n]+)\]\s*$`)

// MockGenerator builds a deterministic graph from the request without calling a
// model: one root node for the prompt and one child per document in the corpus.
type MockGenerator struct{}

func (MockGenerator) Name() string { return "mock" }

func (MockGenerator) Generate(ctx context.Context, r Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prompt := mockLabel(r.User)

	nodes := []map[string]any{
		{"id": "root", "label": prompt, "description": "analytical focus"},
	}
	edges := []map[string]any{}

	for i, m := range docMarker.FindAllStringSubmatch(r.User, -1) {
		id := fmt.Sprintf("doc%d", i+1)
		nodes = append(nodes, map[string]any{"id": id, "label": m[1], "description": "source document"})
		edges = append(edges, map[string]any{"source": "root", "target": id, "relationship": "draws on"})
	}

	b, err := json.Marshal(map[string]any{
		"title": "Mock: " + prompt,
		"nodes": nodes,
		"edges": edges,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// mockLabel pulls the user's request out of a UserMessage and folds it onto one
// line. Text without the request marker is used whole.
func mockLabel(user string) string {
	prompt := user
	if i := strings.LastIndex(prompt, requestMarker); i >= 0 {
		prompt = prompt[i+len(requestMarker):]
		if j := strings.LastIndex(prompt, requestTrailer); j >= 0 {
			prompt = prompt[:j]
		}
	}
	prompt = strings.Join(strings.Fields(prompt), " ")
	if prompt == "" {
		return "Mind Map"
	}
	return prompt
}
