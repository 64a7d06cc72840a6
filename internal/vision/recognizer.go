package vision

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/common"
	"github.com/pravodoc/docrecog/internal/fields"
	"github.com/pravodoc/docrecog/internal/imgproc"
	"github.com/pravodoc/docrecog/internal/recognize"
)

// Recognizer runs one document through a cloud vision model: prepare the
// JPEG payload, prompt per document type, parse the JSON reply. A refusal
// or malformed reply surfaces as an error so the caller can fall back to
// the local engine.
type Recognizer struct {
	client Client
	pre    *imgproc.Preprocessor
	logger *slog.Logger
}

func NewRecognizer(client Client, pre *imgproc.Preprocessor, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{client: client, pre: pre, logger: logger}
}

// NewClient builds the configured provider.
func NewClient(cfg common.VisionConfig, logger *slog.Logger) Client {
	if cfg.Provider == "gemini" {
		return NewGeminiClient(cfg, logger)
	}
	return NewOpenAIClient(cfg, logger)
}

func (r *Recognizer) Recognize(ctx context.Context, imagePath string, docType constants.DocType) (recognize.Result, error) {
	payload, err := r.pre.PrepareForVision(imagePath)
	if err != nil {
		return recognize.Result{}, common.NewAppError("SOURCE_ERROR", err.Error(), common.ErrUnreadableSource)
	}

	content, err := r.client.Recognize(ctx, payload, "image/jpeg", PromptFor(docType))
	if err != nil {
		return recognize.Result{}, err
	}
	if err := CheckRefusal(content); err != nil {
		r.logger.Warn("vision model refused", "doc_type", docType)
		return recognize.Result{}, err
	}

	set, text := r.parse(content, docType)
	resolved := docType
	if resolved == "" || resolved == constants.DocTypeUnknown {
		resolved = fields.DetectDocType(text)
	}

	return recognize.Result{
		DocType:    resolved,
		Fields:     set,
		Confidence: fields.Confidence(text, set, resolved),
		Text:       text,
		Method:     "cloud-vision",
		Status:     recognize.StatusFor(set, resolved),
	}, nil
}

// parse extracts the structured payload from model text. Valid JSON per
// the document schema wins; anything else degrades to running the local
// pattern tables over the raw reply.
func (r *Recognizer) parse(content string, docType constants.DocType) (fields.Set, string) {
	if block, ok := ExtractJSONBlock(content); ok {
		if err := ValidateJSONAgainstSchema(BuildFieldsSchema(docType), block); err == nil {
			var raw map[string]string
			if err := json.Unmarshal(block, &raw); err == nil {
				set := fields.Set{}
				text := content
				for k, v := range raw {
					if k == "text" {
						text = v
						continue
					}
					if v != "" {
						set[k] = v
					}
				}
				return set, text
			}
		} else {
			r.logger.Warn("vision payload failed schema validation", "error", err)
		}
	}
	return fields.Extract(content, docType), content
}
