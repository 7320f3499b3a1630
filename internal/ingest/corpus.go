package ingest

import (
	"strings"

	"github.com/MalithGihan/mindmap-service/pkg/types"
)

// CorpusSeparator sits between document blocks in an aggregated corpus.
const CorpusSeparator = "\n\n---\n\n"

// Aggregate joins documents, in slice order, into one corpus. Each block is
// "[filename]\n" followed by the text so facts can be attributed to their source.
func Aggregate(docs []types.Document) (string, error) {
	if len(docs) == 0 {
		return "", ErrEmptyCorpus
	}
	blocks := make([]string, len(docs))
	for i, d := range docs {
		blocks[i] = "[" + d.Filename + "]\n" + d.Content
	}
	return strings.Join(blocks, CorpusSeparator), nil
}
