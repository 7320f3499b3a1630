package store

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 128

// ExtractCache memoizes extracted text by file extension and content hash, so
// re-uploading the same bytes skips extraction and OCR.
type ExtractCache struct {
	entries *lru.Cache[string, string]
}

func NewExtractCache(size int) (*ExtractCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &ExtractCache{entries: c}, nil
}

func cacheKey(filename string, content []byte) string {
	sum := sha256.Sum256(content)
	return strings.ToLower(filepath.Ext(filename)) + ":" + hex.EncodeToString(sum[:])
}

func (c *ExtractCache) Get(filename string, content []byte) (string, bool) {
	return c.entries.Get(cacheKey(filename, content))
}

func (c *ExtractCache) Put(filename string, content []byte, text string) {
	c.entries.Add(cacheKey(filename, content), text)
}

func (c *ExtractCache) Len() int { return c.entries.Len() }
