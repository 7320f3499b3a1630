package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MalithGihan/mindmap-service/pkg/types"
)

// Format is the closed set of extraction strategies.
type Format int

const (
	FormatPlainText Format = iota + 1
	FormatStructuredDocument
	FormatPDF
)

func (f Format) String() string {
	switch f {
	case FormatPlainText:
		return "plaintext"
	case FormatStructuredDocument:
		return "docx"
	case FormatPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

var supported = []string{".txt", ".md", ".docx", ".pdf"}

// SupportedExtensions returns the accepted file suffixes, lower-case with the dot.
func SupportedExtensions() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}

// DetectFormat picks the strategy from the file name suffix, case-insensitively.
func DetectFormat(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt", ".md":
		return FormatPlainText, nil
	case ".docx":
		return FormatStructuredDocument, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return 0, &UnsupportedFormatError{Ext: ext}
	}
}

// Dispatcher routes a file to its extractor and enforces the non-empty post-condition.
// It holds no mutable state and is safe for concurrent use.
type Dispatcher struct {
	pdf     *PDFExtractor
	logger  *zap.Logger
	workers int
}

func NewDispatcher(pdf *PDFExtractor, logger *zap.Logger, workers int) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Dispatcher{pdf: pdf, logger: logger, workers: workers}
}

func (d *Dispatcher) Extract(ctx context.Context, filename string, content []byte) (string, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return "", err
	}

	text, err := d.run(ctx, format, content)
	if err != nil {
		var ee *ExtractionError
		if errors.As(err, &ee) {
			// page-level errors keep their page number
			if ee.Filename == "" {
				ee.Filename = filename
			}
			return "", ee
		}
		return "", &ExtractionError{Filename: filename, Err: err}
	}

	if strings.TrimSpace(text) == "" {
		return "", &NoContentError{Filename: filename}
	}
	d.logger.Debug("extracted document",
		zap.String("filename", filename),
		zap.Stringer("format", format),
		zap.Int("bytes", len(content)),
		zap.Int("chars", len(text)))
	return text, nil
}

func (d *Dispatcher) run(ctx context.Context, format Format, content []byte) (string, error) {
	switch format {
	case FormatPlainText:
		return DecodeText(content), nil
	case FormatStructuredDocument:
		return ExtractDOCX(content)
	case FormatPDF:
		if d.pdf == nil {
			return "", errPDFUnavailable
		}
		return d.pdf.Extract(ctx, content)
	}
	return "", &UnsupportedFormatError{Ext: format.String()}
}

// File is one uploaded input for ExtractAll.
type File struct {
	Name    string
	Content []byte
}

// ExtractAll validates every file name first, then extracts in parallel and returns
// documents in input order.
func (d *Dispatcher) ExtractAll(ctx context.Context, files []File) ([]types.Document, error) {
	for _, f := range files {
		if _, err := DetectFormat(f.Name); err != nil {
			return nil, err
		}
	}

	texts := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, f := range files {
		g.Go(func() error {
			text, err := d.Extract(gctx, f.Name, f.Content)
			if err != nil {
				return err
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]types.Document, len(files))
	for i, f := range files {
		docs[i] = types.NewDocument(f.Name, texts[i])
	}
	return docs, nil
}
