// Package ocr binds the Tesseract engine (via cgo) to the ingest OCR interface.
package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/MalithGihan/mindmap-service/internal/ingest"
)

// Tesseract runs Tesseract through gosseract. A client is created per call,
// so one Tesseract may be shared by concurrent extractions.
type Tesseract struct {
	Languages []string
}

var _ ingest.OCREngine = (*Tesseract)(nil)

func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if len(t.Languages) > 0 {
		if err := client.SetLanguage(t.Languages...); err != nil {
			return "", fmt.Errorf("ocr language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("ocr image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}
