package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Rasterizer renders one page of a PDF file on disk to an encoded image.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, page int, scale float64) ([]byte, error)
}

// PdfcpuOpener opens PDFs with pdfcpu and reads each page's content stream.
type PdfcpuOpener struct {
	Rasterizer Rasterizer
	TempDir    string
}

var _ PDFOpener = (*PdfcpuOpener)(nil)

func (o *PdfcpuOpener) Open(ctx context.Context, content []byte) (PDFDocument, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(bytes.NewReader(content), conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}
	return &pdfcpuDocument{
		ctx:        pdfCtx,
		raw:        content,
		rasterizer: o.Rasterizer,
		tempDir:    o.TempDir,
	}, nil
}

type pdfcpuDocument struct {
	ctx        *model.Context
	raw        []byte
	rasterizer Rasterizer
	tempDir    string
	spool      string
}

func (d *pdfcpuDocument) PageCount() int { return d.ctx.PageCount }

func (d *pdfcpuDocument) PageText(_ context.Context, page int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(d.ctx, page)
	if err != nil {
		return "", fmt.Errorf("read content stream: %w", err)
	}
	if r == nil {
		return "", nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read content stream: %w", err)
	}
	text, err := textFromContentStream(b)
	if err != nil {
		return "", fmt.Errorf("page %d content stream: %w", page, err)
	}
	return text, nil
}

// RenderPage spools the PDF to a temp file on first use; Close removes it.
func (d *pdfcpuDocument) RenderPage(ctx context.Context, page int, scale float64) ([]byte, error) {
	if d.rasterizer == nil {
		return nil, fmt.Errorf("no rasterizer configured")
	}
	if d.spool == "" {
		f, err := os.CreateTemp(d.tempDir, "mindmap-*.pdf")
		if err != nil {
			return nil, fmt.Errorf("spool pdf: %w", err)
		}
		d.spool = f.Name()
		_, werr := f.Write(d.raw)
		cerr := f.Close()
		if werr != nil {
			return nil, fmt.Errorf("spool pdf: %w", werr)
		}
		if cerr != nil {
			return nil, fmt.Errorf("spool pdf: %w", cerr)
		}
	}
	return d.rasterizer.Rasterize(ctx, d.spool, page, scale)
}

func (d *pdfcpuDocument) Close() error {
	d.ctx = nil
	if d.spool == "" {
		return nil
	}
	path := d.spool
	d.spool = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
