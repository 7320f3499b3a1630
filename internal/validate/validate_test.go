package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalithGihan/mindmap-service/pkg/types"
)

func TestMindMapJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"minimal", `{"title":"T","nodes":[{"id":"n1","label":"L"}],"edges":[]}`, true},
		{"no title", `{"nodes":[],"edges":[]}`, false},
		{"with edge", `{"title":"T","nodes":[{"id":"a","label":"A"}],"edges":[{"source":"a","target":"a","relationship":"self"}]}`, true},
		{"missing edges", `{"nodes":[]}`, false},
		{"missing label", `{"nodes":[{"id":"n1"}],"edges":[]}`, false},
		{"empty id", `{"nodes":[{"id":"","label":"L"}],"edges":[]}`, false},
		{"numeric target", `{"nodes":[],"edges":[{"source":"a","target":2}]}`, false},
		{"array root", `[]`, false},
		{"not json", `{`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := MindMapJSON([]byte(tc.raw))
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMindMap_Typed(t *testing.T) {
	m := types.MindMap{
		Title: "T",
		Nodes: []types.Node{{ID: "a", Label: "A"}, {ID: "b", Label: "B", Description: "d"}},
		Edges: []types.Edge{{Source: "a", Target: "b"}},
	}
	require.NoError(t, MindMap(m))
	assert.NotEmpty(t, Schema())
}
