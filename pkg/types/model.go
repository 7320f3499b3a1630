package types

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrDuplicateNode = errors.New("duplicate node id")
	ErrDanglingEdge  = errors.New("dangling edge")
)

// Document is an uploaded file reduced to its extracted text.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func NewDocument(filename, content string) Document {
	return Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		Content:    content,
		UploadedAt: time.Now(),
	}
}

// DocumentSummary is the list projection of a Document.
type DocumentSummary struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Chars    int    `json:"chars"`
}

func (d Document) Summary() DocumentSummary {
	return DocumentSummary{ID: d.ID, Filename: d.Filename, Chars: utf8.RuneCountInString(d.Content)}
}

type Node struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

type Edge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Relationship string `json:"relationship,omitempty"`
}

// MindMap is the synthesized graph. Hierarchy is expressed only through edges.
type MindMap struct {
	Title string `json:"title"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeIndex maps node id to its position in Nodes. Later duplicates win.
func (m *MindMap) NodeIndex() map[string]int {
	idx := make(map[string]int, len(m.Nodes))
	for i, n := range m.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// DanglingEdges returns the indices of edges whose source or target is not a node id.
func (m *MindMap) DanglingEdges() []int {
	idx := m.NodeIndex()
	var out []int
	for i, e := range m.Edges {
		_, okS := idx[e.Source]
		_, okT := idx[e.Target]
		if !okS || !okT {
			out = append(out, i)
		}
	}
	return out
}

// Validate checks node id uniqueness and edge referential integrity.
func (m *MindMap) Validate() error {
	seen := make(map[string]struct{}, len(m.Nodes))
	for i, n := range m.Nodes {
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: nodes[%d] reuses id %q", ErrDuplicateNode, i, n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	for i, e := range m.Edges {
		if _, ok := seen[e.Source]; !ok {
			return fmt.Errorf("%w: edges[%d] source %q is not a node", ErrDanglingEdge, i, e.Source)
		}
		if _, ok := seen[e.Target]; !ok {
			return fmt.Errorf("%w: edges[%d] target %q is not a node", ErrDanglingEdge, i, e.Target)
		}
	}
	return nil
}

// View is a saved pairing of a prompt and the graph it produced.
type View struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	MapData   MindMap   `json:"map_data"`
	CreatedAt time.Time `json:"created_at"`
}

func NewView(name, prompt string, m MindMap) View {
	return View{
		ID:        uuid.NewString(),
		Name:      name,
		Prompt:    prompt,
		MapData:   m,
		CreatedAt: time.Now(),
	}
}

type ViewSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

func (v View) Summary() ViewSummary {
	return ViewSummary{ID: v.ID, Name: v.Name, Prompt: v.Prompt}
}
