package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMap() MindMap {
	return MindMap{
		Title: "Interviews",
		Nodes: []Node{
			{ID: "node1", Label: "Pain points"},
			{ID: "node2", Label: "Onboarding", Description: "first week friction"},
		},
		Edges: []Edge{{Source: "node1", Target: "node2", Relationship: "includes"}},
	}
}

func TestMindMapValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *MindMap)
		wantErr error
	}{
		{name: "valid", mutate: func(m *MindMap) {}},
		{
			name:    "duplicate node",
			mutate:  func(m *MindMap) { m.Nodes = append(m.Nodes, Node{ID: "node1", Label: "again"}) },
			wantErr: ErrDuplicateNode,
		},
		{
			name:    "unknown source",
			mutate:  func(m *MindMap) { m.Edges[0].Source = "ghost" },
			wantErr: ErrDanglingEdge,
		},
		{
			name:    "unknown target",
			mutate:  func(m *MindMap) { m.Edges[0].Target = "ghost" },
			wantErr: ErrDanglingEdge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sampleMap()
			tt.mutate(&m)
			err := m.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestDanglingEdges(t *testing.T) {
	m := sampleMap()
	m.Edges = append(m.Edges, Edge{Source: "node2", Target: "nope"}, Edge{Source: "node2", Target: "node1"})
	assert.Equal(t, []int{1}, m.DanglingEdges())
}

func TestMindMapWireShape(t *testing.T) {
	b, err := json.Marshal(MindMap{Title: "T", Nodes: []Node{{ID: "n1", Label: "L"}}, Edges: []Edge{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T","nodes":[{"id":"n1","label":"L"}],"edges":[]}`, string(b))
}

func TestConstructors(t *testing.T) {
	d := NewDocument("a.txt", "hello")
	assert.NotEmpty(t, d.ID)
	assert.False(t, d.UploadedAt.IsZero())
	assert.Equal(t, DocumentSummary{ID: d.ID, Filename: "a.txt", Chars: 5}, d.Summary())
	assert.Equal(t, 5, NewDocument("é.txt", "héllo").Summary().Chars)
	assert.Equal(t, 3, NewDocument("cjk.txt", "日本語").Summary().Chars)

	v := NewView("v", "p", sampleMap())
	assert.NotEqual(t, d.ID, v.ID)
	assert.Equal(t, ViewSummary{ID: v.ID, Name: "v", Prompt: "p"}, v.Summary())
}
