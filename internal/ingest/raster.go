package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// pointsPerInch is the PDF user-space resolution; scale 1 renders at 72 DPI.
const pointsPerInch = 72

// PdftoppmRasterizer renders pages with poppler's pdftoppm.
type PdftoppmRasterizer struct {
	// Binary defaults to "pdftoppm" on PATH.
	Binary string
}

var _ Rasterizer = (*PdftoppmRasterizer)(nil)

func (r *PdftoppmRasterizer) Rasterize(ctx context.Context, pdfPath string, page int, scale float64) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = "pdftoppm"
	}
	dpi := int(scale * pointsPerInch)
	p := strconv.Itoa(page)
	args := []string{"-f", p, "-l", p, "-r", strconv.Itoa(dpi), "-png", "-singlefile", pdfPath}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (stderr: %s)", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("pdftoppm: empty image for page %d", page)
	}
	return stdout.Bytes(), nil
}
