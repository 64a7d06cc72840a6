package recognize

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/fields"
	"github.com/pravodoc/docrecog/internal/imgproc"
	"github.com/pravodoc/docrecog/internal/ocr"
)

// VariantRecognizer explores a small grid of binarization thresholds and
// page segmentation modes and keeps the single highest-confidence result.
// Local engines are very sensitive to both knobs; no one configuration is
// reliable across document conditions, so we trade compute for robustness.
type VariantRecognizer struct {
	pre        *imgproc.Preprocessor
	engine     ocr.Engine
	language   string
	thresholds []int
	psmModes   []int
	minWidth   int
	logger     *slog.Logger
}

func NewVariantRecognizer(pre *imgproc.Preprocessor, engine ocr.Engine, language string, thresholds, psmModes []int, minWidth int, logger *slog.Logger) *VariantRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if len(thresholds) == 0 {
		thresholds = []int{140, 170}
	}
	if len(psmModes) == 0 {
		psmModes = []int{3, 4, 6, 11, 12}
	}
	return &VariantRecognizer{
		pre:        pre,
		engine:     engine,
		language:   language,
		thresholds: thresholds,
		psmModes:   psmModes,
		minWidth:   minWidth,
		logger:     logger,
	}
}

// Recognize runs the variant grid strictly sequentially (the local engine
// is CPU-bound) and returns the draft with the greatest confidence. Ties
// keep the first-found variant, so output is deterministic for a
// deterministic engine. Engine failures score zero and the grid continues;
// only an unreadable source is fatal.
func (r *VariantRecognizer) Recognize(ctx context.Context, path string, hint constants.DocType) (Result, error) {
	best := Result{
		DocType: hint,
		Fields:  fields.Set{},
		Status:  constants.StatusUnextracted,
		Method:  "multi-variant-ocr",
	}

	for _, threshold := range r.thresholds {
		pre, err := r.pre.Preprocess(path, imgproc.Params{
			Threshold: uint8(threshold),
			MinWidth:  r.minWidth,
		})
		if err != nil {
			return Result{}, fmt.Errorf("preprocess (threshold %d): %w", threshold, err)
		}

		for _, psm := range r.psmModes {
			text, err := r.engine.Recognize(ctx, pre.Path, ocr.Options{
				Language: r.language,
				PSM:      psm,
			})
			if err != nil {
				r.logger.Warn("variant failed, continuing",
					"threshold", threshold, "psm", psm, "error", err)
				continue
			}
			text = ocr.NormalizeHomoglyphs(ocr.Normalize(text))

			docType := hint
			if docType == "" || docType == constants.DocTypeUnknown {
				docType = fields.DetectDocType(text)
			}
			set := fields.Extract(text, docType)
			conf := fields.Confidence(text, set, docType)

			r.logger.Debug("variant scored",
				"threshold", threshold, "psm", psm,
				"doc_type", docType, "confidence", conf, "text_len", len(text))

			if conf > best.Confidence {
				best = Result{
					DocType:    docType,
					Fields:     set,
					Confidence: conf,
					Text:       text,
					Method:     "multi-variant-ocr",
					Status:     StatusFor(set, docType),
				}
			}
		}

		if err := os.Remove(pre.Path); err != nil {
			r.logger.Warn("failed to remove preprocessed artifact", "path", pre.Path, "error", err)
		}
	}

	return best, nil
}

// RecognizeOnce runs a single restricted pass (used by zone strategies)
// without the grid.
func (r *VariantRecognizer) RecognizeOnce(ctx context.Context, path string, opts ocr.Options) (string, error) {
	if opts.Language == "" {
		opts.Language = r.language
	}
	text, err := r.engine.Recognize(ctx, path, opts)
	if err != nil {
		return "", err
	}
	return ocr.Normalize(text), nil
}

// StatusFor derives the extraction status from a field set: no fields is
// UNEXTRACTED, a complete important-field set is OK, anything else PARTIAL.
func StatusFor(set fields.Set, docType constants.DocType) constants.ExtractionStatus {
	if len(set) == 0 {
		return constants.StatusUnextracted
	}
	if fields.Complete(set, docType) {
		return constants.StatusOK
	}
	return constants.StatusPartial
}
