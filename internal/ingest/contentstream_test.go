package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "single show",
			stream: "BT /F1 12 Tf 72 712 Td (Hello World) Tj ET",
			want:   "Hello World\n",
		},
		{
			name:   "line moves",
			stream: "BT 72 712 Td (one) Tj 0 -14 Td (two) Tj T* (three) Tj ET",
			want:   "one\ntwo\nthree\n",
		},
		{
			name:   "horizontal move stays on line",
			stream: "BT 72 712 Td (left) Tj 100 0 Td ( right) Tj ET",
			want:   "left right\n",
		},
		{
			name:   "TJ kerning and gaps",
			stream: "BT [(Ke) 20 (rn) -500 (word)] TJ ET",
			want:   "Kern word\n",
		},
		{
			name:   "escapes and nesting",
			stream: `BT (a\(b\) \\ \101 (nested)) Tj ET`,
			want:   `a(b) \ A (nested)` + "\n",
		},
		{
			name:   "hex string",
			stream: "BT <48656C6C6F> Tj ET",
			want:   "Hello\n",
		},
		{
			name:   "utf16 hex string",
			stream: "BT <FEFF00E900E8> Tj ET",
			want:   "éè\n",
		},
		{
			name:   "quote operators",
			stream: "BT (first) Tj (second) ' 1 2 (third) \" ET",
			want:   "first\nsecond\nthird\n",
		},
		{
			name:   "graphics only",
			stream: "q 1 0 0 1 0 0 cm 0.5 w 0 0 m 100 100 l S Q % comment (not text) Tj\n",
			want:   "",
		},
		{
			name:   "dictionary operands",
			stream: "/P <</MCID 0>> BDC BT (marked) Tj ET EMC",
			want:   "marked\n",
		},
		{
			name:   "inline image is skipped",
			stream: "BI /W 2 /H 2 /BPC 8 ID \x00(\xff) Tj\x01 EI BT (after) Tj ET",
			want:   "after\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := textFromContentStream([]byte(tt.stream))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextFromContentStream_NestingLimit(t *testing.T) {
	_, err := textFromContentStream(bytes.Repeat([]byte("["), 1_000_000))
	assert.ErrorIs(t, err, errArrayDepth)

	closed := bytes.Repeat([]byte("["), 200)
	closed = append(closed, bytes.Repeat([]byte("]"), 200)...)
	_, err = textFromContentStream(append(closed, " BT (x) Tj ET"...))
	assert.ErrorIs(t, err, errArrayDepth)

	ok := append(bytes.Repeat([]byte("["), maxArrayDepth), bytes.Repeat([]byte("]"), maxArrayDepth)...)
	got, err := textFromContentStream(append(ok, " BT (x) Tj ET"...))
	require.NoError(t, err)
	assert.Equal(t, "x\n", got)
}
