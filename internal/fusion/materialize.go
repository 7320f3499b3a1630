package fusion

import (
	"fmt"
	"strings"

	"github.com/MalithGihan/mindmap-service/pkg/types"
)

// DefaultTitle is used when the model omits a title.
const DefaultTitle = "Mind Map"

// Materialize turns a recovered JSON object into a MindMap. Missing "nodes" or
// "edges" read as empty; every element must carry its required string fields.
// Node ids must be unique and every edge must reference a known node.
func Materialize(obj map[string]any) (*types.MindMap, error) {
	m := &types.MindMap{Title: DefaultTitle, Nodes: []types.Node{}, Edges: []types.Edge{}}

	if v, ok := obj["title"]; ok && v != nil {
		title, ok := v.(string)
		if !ok {
			return nil, &SchemaError{Field: "title", Reason: "must be a string"}
		}
		if t := strings.TrimSpace(title); t != "" {
			m.Title = t
		}
	}

	nodes, err := elements(obj, "nodes")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(nodes))
	for i, el := range nodes {
		id, err := requiredString(el, "nodes", i, "id")
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			return nil, &SchemaError{Collection: "nodes", Index: i, Field: "id", Reason: fmt.Sprintf("duplicates %q", id)}
		}
		seen[id] = struct{}{}
		label, err := requiredString(el, "nodes", i, "label")
		if err != nil {
			return nil, err
		}
		desc, err := optionalString(el, "nodes", i, "description")
		if err != nil {
			return nil, err
		}
		m.Nodes = append(m.Nodes, types.Node{ID: id, Label: label, Description: desc})
	}

	edges, err := elements(obj, "edges")
	if err != nil {
		return nil, err
	}
	for i, el := range edges {
		src, err := requiredString(el, "edges", i, "source")
		if err != nil {
			return nil, err
		}
		dst, err := requiredString(el, "edges", i, "target")
		if err != nil {
			return nil, err
		}
		rel, err := optionalString(el, "edges", i, "relationship")
		if err != nil {
			return nil, err
		}
		m.Edges = append(m.Edges, types.Edge{Source: src, Target: dst, Relationship: rel})
	}

	for i, e := range m.Edges {
		if _, ok := seen[e.Source]; !ok {
			return nil, &DanglingEdgeError{Index: i, Source: e.Source, Target: e.Target, Missing: e.Source}
		}
		if _, ok := seen[e.Target]; !ok {
			return nil, &DanglingEdgeError{Index: i, Source: e.Source, Target: e.Target, Missing: e.Target}
		}
	}
	return m, nil
}

func elements(obj map[string]any, key string) ([]map[string]any, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, &SchemaError{Field: key, Reason: "must be an array"}
	}
	out := make([]map[string]any, len(arr))
	for i, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, &SchemaError{Collection: key, Index: i, Reason: "must be an object"}
		}
		out[i] = m
	}
	return out, nil
}

// requiredString rejects absent, null, non-string and blank values.
func requiredString(el map[string]any, coll string, i int, field string) (string, error) {
	v, ok := el[field]
	if !ok || v == nil {
		return "", &SchemaError{Collection: coll, Index: i, Field: field, Reason: "is required"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Collection: coll, Index: i, Field: field, Reason: "must be a string"}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &SchemaError{Collection: coll, Index: i, Field: field, Reason: "must not be empty"}
	}
	return s, nil
}

func optionalString(el map[string]any, coll string, i int, field string) (string, error) {
	v, ok := el[field]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Collection: coll, Index: i, Field: field, Reason: "must be a string"}
	}
	return strings.TrimSpace(s), nil
}
