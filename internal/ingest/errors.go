package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrExtractionFailed   = errors.New("extraction failed")
	ErrNoContentExtracted = errors.New("no content extracted")
	ErrEmptyCorpus        = errors.New("no documents to aggregate")
)

// UnsupportedFormatError names the rejected extension and the supported set.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %q (supported: %s)", e.Ext, strings.Join(SupportedExtensions(), ", "))
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// ExtractionError wraps any extractor failure. Page is 1-based and zero when the
// failure is not tied to a page.
type ExtractionError struct {
	Filename string
	Page     int
	Err      error
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	b.WriteString("failed to process")
	if e.Filename != "" {
		b.WriteString(" ")
		b.WriteString(e.Filename)
	}
	if e.Page > 0 {
		fmt.Fprintf(&b, " (page %d)", e.Page)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtractionFailed }

type NoContentError struct {
	Filename string
}

func (e *NoContentError) Error() string {
	return fmt.Sprintf("no text could be extracted from %s", e.Filename)
}

func (e *NoContentError) Is(target error) bool { return target == ErrNoContentExtracted }
