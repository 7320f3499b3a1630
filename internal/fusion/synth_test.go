package fusion

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalithGihan/mindmap-service/pkg/types"
)

type scriptedGenerator struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	calls    int
	requests []Request
	block    bool
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) Generate(ctx context.Context, r Request) (string, error) {
	g.mu.Lock()
	i := g.calls
	g.calls++
	g.requests = append(g.requests, r)
	g.mu.Unlock()

	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return g.replies[len(g.replies)-1], nil
}

func noSleep(s *Synthesizer) {
	s.sleep = func(context.Context, time.Duration) error { return nil }
}

const validReply = `{"title":"T","nodes":[{"id":"n1","label":"L"}],"edges":[]}`

func TestSynthesize_Success(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{validReply}}
	s := NewSynthesizer(gen, nil, WithModel("m1"), WithMaxTokens(100), WithTemperature(0.5))

	m, err := s.Synthesize(context.Background(), "[a.txt]\nhello", "What matters?")
	require.NoError(t, err)
	assert.Equal(t, "T", m.Title)
	require.Equal(t, 1, gen.calls)

	req := gen.requests[0]
	assert.Equal(t, SystemPrompt, req.System)
	assert.Contains(t, req.User, "[a.txt]\nhello")
	assert.Contains(t, req.User, "My request: What matters?")
	assert.Equal(t, "m1", req.Model)
	assert.Equal(t, 100, req.MaxTokens)
	assert.Equal(t, float32(0.5), req.Temperature)
}

func TestSynthesize_InvalidInput(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{validReply}}
	s := NewSynthesizer(gen, nil)

	_, err := s.Synthesize(context.Background(), " \n\t", "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.EqualError(t, err, "corpus cannot be empty")

	_, err = s.Synthesize(context.Background(), "text", "")
	assert.EqualError(t, err, "prompt cannot be empty")
	assert.Equal(t, 0, gen.calls)
}

func TestSynthesize_WrappedReply(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Sure!\n```json\n" + validReply + "\n```"}}
	m, err := NewSynthesizer(gen, nil).Synthesize(context.Background(), "c", "p")
	require.NoError(t, err)
	assert.Len(t, m.Nodes, 1)
}

func TestSynthesize_MalformedIsNotRetried(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"I cannot help with that"}}
	s := NewSynthesizer(gen, nil, WithRetry(NewRetryPolicy(3)), noSleep)

	_, err := s.Synthesize(context.Background(), "c", "p")
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.Equal(t, 1, gen.calls)
}

func TestSynthesize_SchemaViolationIsNotRetried(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{`{"nodes":[{"id":"a"}]}`}}
	s := NewSynthesizer(gen, nil, WithRetry(NewRetryPolicy(3)), noSleep)

	_, err := s.Synthesize(context.Background(), "c", "p")
	assert.True(t, errors.Is(err, ErrSchemaViolation))
	assert.Equal(t, 1, gen.calls)
}

func TestSynthesize_TransientRetry(t *testing.T) {
	gen := &scriptedGenerator{
		errs:    []error{Transient(errors.New("overloaded")), errors.New("status 429")},
		replies: []string{"", "", validReply},
	}
	s := NewSynthesizer(gen, nil, WithRetry(NewRetryPolicy(2)), noSleep)

	m, err := s.Synthesize(context.Background(), "c", "p")
	require.NoError(t, err)
	assert.Equal(t, "T", m.Title)
	assert.Equal(t, 3, gen.calls)
}

func TestSynthesize_NoRetryByDefault(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{Transient(errors.New("overloaded"))}, replies: []string{validReply}}

	_, err := NewSynthesizer(gen, nil).Synthesize(context.Background(), "c", "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.Equal(t, 1, gen.calls)
}

func TestSynthesize_PermanentFailureNotRetried(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{errors.New("invalid api key")}, replies: []string{validReply}}
	s := NewSynthesizer(gen, nil, WithRetry(NewRetryPolicy(3)), noSleep)

	_, err := s.Synthesize(context.Background(), "c", "p")
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "scripted", ge.Provider)
	assert.False(t, ge.Timeout)
	assert.Equal(t, 1, gen.calls)
}

func TestSynthesize_Timeout(t *testing.T) {
	gen := &scriptedGenerator{block: true, replies: []string{validReply}}
	s := NewSynthesizer(gen, nil, WithTimeout(20*time.Millisecond), WithRetry(NewRetryPolicy(3)), noSleep)

	_, err := s.Synthesize(context.Background(), "c", "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationTimeout))
	assert.False(t, errors.Is(err, ErrGenerationFailed))
	assert.Equal(t, 1, gen.calls)
}

func TestMockGenerator_Label(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"single line", "Themes", "Themes"},
		{"leading newline", "\nThemes", "Themes"},
		{"multi line", "  Compare\n  the methods\n", "Compare the methods"},
		{"blank", "\n\n", "Mind Map"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MockGenerator{}.Generate(context.Background(), Request{User: UserMessage("[a.txt]\nalpha", tt.prompt)})
			require.NoError(t, err)
			var m types.MindMap
			require.NoError(t, json.Unmarshal([]byte(out), &m))
			assert.Equal(t, tt.want, m.Nodes[0].Label)
			assert.Equal(t, "Mock: "+tt.want, m.Title)
		})
	}
}

func TestSynthesize_MockGenerator(t *testing.T) {
	s := NewSynthesizer(MockGenerator{}, nil)
	corpus := "[a.txt]\nalpha\n\n---\n\n[b.md]\nbeta"

	m, err := s.Synthesize(context.Background(), corpus, "Themes")
	require.NoError(t, err)
	assert.Equal(t, "Mock: Themes", m.Title)
	require.Len(t, m.Nodes, 3)
	assert.Equal(t, "a.txt", m.Nodes[1].Label)
	assert.Equal(t, "b.md", m.Nodes[2].Label)
	assert.Len(t, m.Edges, 2)
	assert.Empty(t, m.DanglingEdges())
}
