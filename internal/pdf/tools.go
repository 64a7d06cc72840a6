package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pravodoc/docrecog/internal/ocr"
)

// ToolAdapter wraps one external extraction tool. IsAvailable is probed
// before every Invoke so a missing binary quietly disables its strategy.
type ToolAdapter interface {
	Name() string
	IsAvailable(ctx context.Context) bool
	Invoke(ctx context.Context, path string) (string, error)
}

// ExternalOCRTool shells out to a dedicated pdf-ocr helper script that
// prints extracted text on stdout. An empty binary disables it.
type ExternalOCRTool struct {
	Binary string
	runner ocr.Runner
}

func NewExternalOCRTool(binary string, runner ocr.Runner) *ExternalOCRTool {
	if runner == nil {
		runner = ocr.ExecRunner{}
	}
	return &ExternalOCRTool{Binary: binary, runner: runner}
}

func (t *ExternalOCRTool) Name() string { return "pdf-external-tool" }

func (t *ExternalOCRTool) IsAvailable(context.Context) bool {
	return t.Binary != "" && ocr.LookPath(t.Binary)
}

func (t *ExternalOCRTool) Invoke(ctx context.Context, path string) (string, error) {
	out, errb, err := t.runner.Run(ctx, t.Binary, path)
	if err != nil {
		return "", fmt.Errorf("%s: %w (%s)", t.Binary, err, strings.TrimSpace(string(errb)))
	}
	return strings.TrimSpace(string(out)), nil
}

// TextLayerTool reads the embedded text layer with pdftotext. Useless for
// scanned documents, nearly free for born-digital ones.
type TextLayerTool struct {
	Binary string
	runner ocr.Runner
}

func NewTextLayerTool(binary string, runner ocr.Runner) *TextLayerTool {
	if binary == "" {
		binary = "pdftotext"
	}
	if runner == nil {
		runner = ocr.ExecRunner{}
	}
	return &TextLayerTool{Binary: binary, runner: runner}
}

func (t *TextLayerTool) Name() string { return "pdf-text-layer" }

func (t *TextLayerTool) IsAvailable(context.Context) bool {
	return ocr.LookPath(t.Binary)
}

func (t *TextLayerTool) Invoke(ctx context.Context, path string) (string, error) {
	out, errb, err := t.runner.Run(ctx, t.Binary, "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w (%s)", err, strings.TrimSpace(string(errb)))
	}
	return strings.TrimSpace(string(out)), nil
}

// Rasterizer renders PDF pages to PNG files with pdftoppm so the image
// pipeline can recognize them.
type Rasterizer struct {
	Binary string
	DPI    int
	runner ocr.Runner
}

func NewRasterizer(binary string, dpi int, runner ocr.Runner) *Rasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	if runner == nil {
		runner = ocr.ExecRunner{}
	}
	return &Rasterizer{Binary: binary, DPI: dpi, runner: runner}
}

func (r *Rasterizer) IsAvailable(context.Context) bool {
	return ocr.LookPath(r.Binary)
}

// Render writes one PNG per page under dir and returns the page paths in
// page order.
func (r *Rasterizer) Render(ctx context.Context, path, dir string) ([]string, error) {
	prefix := filepath.Join(dir, "page")
	args := []string{"-png", "-r", fmt.Sprintf("%d", r.DPI), path, prefix}
	if _, errb, err := r.runner.Run(ctx, r.Binary, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (%s)", err, strings.TrimSpace(string(errb)))
	}
	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages for %q", path)
	}
	sort.Strings(pages)
	return pages, nil
}

func fileSizeMB(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size() / (1 << 20), nil
}
