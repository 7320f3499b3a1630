package ingest

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	return buildZip(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types/>`,
		"word/document.xml":   `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`,
	})
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "paragraphs in order",
			body: `<w:p><w:r><w:t>First</w:t></w:r></w:p><w:p><w:r><w:t>Second</w:t></w:r></w:p>`,
			want: "First\nSecond",
		},
		{
			name: "runs are concatenated",
			body: `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Bold</w:t></w:r><w:r><w:t xml:space="preserve"> plain</w:t></w:r></w:p>`,
			want: "Bold plain",
		},
		{
			name: "empty paragraphs are kept",
			body: `<w:p><w:r><w:t>a</w:t></w:r></w:p><w:p/><w:p><w:r><w:t>b</w:t></w:r></w:p>`,
			want: "a\n\nb",
		},
		{
			name: "tabs and breaks",
			body: `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>x</w:t><w:tab/><w:t>y</w:t><w:br/><w:t>z</w:t></w:r></w:p>`,
			want: "x\ty\nz",
		},
		{
			name: "table paragraphs are skipped",
			body: `<w:p><w:r><w:t>before</w:t></w:r></w:p><w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl><w:p><w:r><w:t>after</w:t></w:r></w:p>`,
			want: "before\nafter",
		},
		{
			name: "hyperlink runs",
			body: `<w:p><w:r><w:t>see </w:t></w:r><w:hyperlink><w:r><w:t>link</w:t></w:r></w:hyperlink></w:p>`,
			want: "see link",
		},
		{
			name: "escaped entities",
			body: `<w:p><w:r><w:t>R&amp;D &lt;draft&gt;</w:t></w:r></w:p>`,
			want: "R&D <draft>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractDOCX(buildDOCX(t, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractDOCXFailures(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		wantMsg string
	}{
		{"not a zip", []byte("plain text"), "open docx"},
		{"missing part", buildZip(t, map[string]string{"word/other.xml": "<x/>"}), "word/document.xml not found"},
		{"broken xml", buildZip(t, map[string]string{"word/document.xml": "<w:document><w:body><w:p>"}), "parse word/document.xml"},
		{"no body", buildZip(t, map[string]string{"word/document.xml": "<w:document " + wordNS + "/>"}), "no body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractDOCX(tt.content)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
