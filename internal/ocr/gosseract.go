package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// EmbeddedEngine runs tesseract in-process through gosseract. A fresh
// client per call keeps passes independent; whitelist and segmentation
// mode leak between calls on a reused client otherwise.
type EmbeddedEngine struct{}

func NewEmbeddedEngine() *EmbeddedEngine { return &EmbeddedEngine{} }

func (EmbeddedEngine) Recognize(ctx context.Context, imagePath string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if opts.Language != "" {
		if err := client.SetLanguage(strings.Split(opts.Language, "+")...); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if opts.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PSM)); err != nil {
			return "", fmt.Errorf("set psm: %w", err)
		}
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			return "", fmt.Errorf("set whitelist: %w", err)
		}
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract: %w", err)
	}
	return strings.TrimSpace(text), nil
}
