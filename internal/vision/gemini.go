package vision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/pravodoc/docrecog/internal/common"
)

// GeminiClient is the Gemini implementation of Client. A fresh genai
// client per call keeps the type dependency-free to construct; the call
// volume here does not justify connection reuse.
type GeminiClient struct {
	cfg common.VisionConfig
	log *slog.Logger
}

func NewGeminiClient(cfg common.VisionConfig, logger *slog.Logger) *GeminiClient {
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiClient{cfg: cfg, log: logger}
}

func (c *GeminiClient) Recognize(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("gemini: api key is empty")
	}
	rid := uuid.New().String()
	start := time.Now()
	c.log.Info("vision.gemini.start",
		"req_id", rid, "model", c.cfg.Model, "image_bytes", len(image), "mime", mimeType)

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.cfg.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(strings.TrimSpace(c.cfg.Model))
	temp := c.cfg.Temperature
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(prompt),
		&genai.Blob{MIMEType: mimeType, Data: image},
	)
	if err != nil {
		c.log.Error("vision.gemini.error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	content := strings.TrimSpace(b.String())

	c.log.Info("vision.gemini.ok",
		"req_id", rid, "content_len", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}
