package ingest

import "strings"

// DecodeText reads bytes as UTF-8, dropping sequences that do not decode.
// It never fails.
func DecodeText(content []byte) string {
	return strings.ToValidUTF8(string(content), "")
}
