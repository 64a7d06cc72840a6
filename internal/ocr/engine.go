package ocr

import (
	"context"
	"fmt"
	"strings"
)

// Options configure a single recognition pass.
type Options struct {
	Language  string // e.g. "rus+eng"
	PSM       int    // page segmentation mode; 0 = engine default
	Whitelist string // restrict recognized characters; "" = unrestricted
}

// Engine is a local recognition engine: image file in, raw text out.
// Implementations must be safe for sequential reuse; the variant grid
// calls them once per (threshold, segmentation mode) combination.
type Engine interface {
	Recognize(ctx context.Context, imagePath string, opts Options) (string, error)
}

// ExecEngine drives the tesseract binary through a Runner.
type ExecEngine struct {
	Binary string
	runner Runner
}

func NewExecEngine(binary string, runner Runner) *ExecEngine {
	if binary == "" {
		binary = "tesseract"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &ExecEngine{Binary: binary, runner: runner}
}

func (e *ExecEngine) Recognize(ctx context.Context, imagePath string, opts Options) (string, error) {
	args := []string{imagePath, "stdout"}
	if opts.Language != "" {
		args = append(args, "-l", opts.Language)
	}
	if opts.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", opts.PSM))
	}
	if opts.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+opts.Whitelist)
	}

	out, errb, err := e.runner.Run(ctx, e.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return strings.TrimSpace(string(out)), nil
}
