package ingest

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// DefaultRenderScale upscales image-only pages before OCR.
const DefaultRenderScale = 2.0

var errPDFUnavailable = errors.New("pdf extraction is not configured")

// PDFOpener gives page-wise access to a PDF held in memory.
type PDFOpener interface {
	Open(ctx context.Context, content []byte) (PDFDocument, error)
}

// PDFDocument is an open PDF. Pages are 1-based. Close must always be called.
type PDFDocument interface {
	PageCount() int
	PageText(ctx context.Context, page int) (string, error)
	RenderPage(ctx context.Context, page int, scale float64) ([]byte, error)
	Close() error
}

// OCREngine turns an encoded raster image into text.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// PDFExtractor reads the text layer of each page and falls back to OCR for pages
// that have none.
type PDFExtractor struct {
	opener PDFOpener
	ocr    OCREngine
	scale  float64
	logger *zap.Logger
}

func NewPDFExtractor(opener PDFOpener, ocr OCREngine, scale float64, logger *zap.Logger) *PDFExtractor {
	if scale <= 0 {
		scale = DefaultRenderScale
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExtractor{opener: opener, ocr: ocr, scale: scale, logger: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	doc, err := e.opener.Open(ctx, content)
	if err != nil {
		return "", &ExtractionError{Err: err}
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("failed to release pdf", zap.Error(cerr))
		}
	}()

	parts := make([]string, 0, doc.PageCount())
	for page := 1; page <= doc.PageCount(); page++ {
		if err := ctx.Err(); err != nil {
			return "", &ExtractionError{Page: page, Err: err}
		}
		text, err := e.page(ctx, doc, page)
		if err != nil {
			return "", &ExtractionError{Page: page, Err: err}
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (e *PDFExtractor) page(ctx context.Context, doc PDFDocument, page int) (string, error) {
	text, err := doc.PageText(ctx, page)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	if e.ocr == nil {
		return "", errors.New("page has no text layer and OCR is not configured")
	}
	img, err := doc.RenderPage(ctx, page, e.scale)
	if err != nil {
		return "", err
	}
	e.logger.Debug("running ocr on image-only page", zap.Int("page", page), zap.Int("image_bytes", len(img)))
	return e.ocr.Recognize(ctx, img)
}
