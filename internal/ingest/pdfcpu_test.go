package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyRasterizer struct {
	calls      []int
	spoolSeen  bool
	spoolPaths []string
}

func (r *spyRasterizer) Rasterize(_ context.Context, pdfPath string, page int, scale float64) ([]byte, error) {
	r.calls = append(r.calls, page)
	r.spoolPaths = append(r.spoolPaths, pdfPath)
	if _, err := os.Stat(pdfPath); err == nil {
		r.spoolSeen = true
	}
	return []byte("png"), nil
}

// twoPagePDF has a text page followed by a page with no text layer.
func twoPagePDF(t *testing.T) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Cell(40, 10, "Hello World")
	pdf.AddPage()
	pdf.Rect(20, 20, 50, 50, "D")

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func TestPdfcpuOpenerReadsTextLayer(t *testing.T) {
	raster := &spyRasterizer{}
	opener := &PdfcpuOpener{Rasterizer: raster, TempDir: t.TempDir()}

	doc, err := opener.Open(context.Background(), twoPagePDF(t))
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, 2, doc.PageCount())

	text, err := doc.PageText(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello World")

	text, err = doc.PageText(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, raster.calls)
}

func TestPdfcpuExtractionFallsBackToOCR(t *testing.T) {
	raster := &spyRasterizer{}
	ocr := &spyOCR{text: "scanned words"}
	e := NewPDFExtractor(&PdfcpuOpener{Rasterizer: raster, TempDir: t.TempDir()}, ocr, 0, nil)

	out, err := e.Extract(context.Background(), twoPagePDF(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Hello World")
	assert.True(t, bytes.HasSuffix([]byte(out), []byte("\n\nscanned words")))
	assert.Equal(t, []int{2}, raster.calls)
	assert.True(t, raster.spoolSeen)
	assert.Equal(t, 1, ocr.calls)

	// spool file is gone once extraction returns
	_, statErr := os.Stat(raster.spoolPaths[0])
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestPdfcpuOpenerRejectsGarbage(t *testing.T) {
	opener := &PdfcpuOpener{TempDir: t.TempDir()}
	_, err := opener.Open(context.Background(), []byte("definitely not a pdf"))
	assert.Error(t, err)
}
