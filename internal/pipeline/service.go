package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/common"
	"github.com/pravodoc/docrecog/internal/fields"
	"github.com/pravodoc/docrecog/internal/imgproc"
	"github.com/pravodoc/docrecog/internal/ocr"
	"github.com/pravodoc/docrecog/internal/pdf"
	"github.com/pravodoc/docrecog/internal/recognize"
	"github.com/pravodoc/docrecog/internal/vision"
)

// Service is the single-document recognition pipeline. It routes each
// request by format and mode: PDFs through the strategy selector, images
// through the variant grid plus zone recovery, cloud mode through the
// vision recognizer with local fallback.
type Service struct {
	pre      *imgproc.Preprocessor
	variants *recognize.VariantRecognizer
	zones    *recognize.ZoneExtractor
	pdfSel   *pdf.Selector
	vision   *vision.Recognizer
	logger   *slog.Logger
}

// New wires the pipeline from configuration. The vision path is only
// enabled when an API key is configured.
func New(cfg *common.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	pre := imgproc.NewPreprocessor(cfg.OCR.TmpDir, logger)

	var engine ocr.Engine
	if cfg.OCR.Engine == "embedded" {
		engine = ocr.NewEmbeddedEngine()
	} else {
		engine = ocr.NewExecEngine(cfg.OCR.Tesseract, nil)
	}

	variants := recognize.NewVariantRecognizer(
		pre, engine, cfg.OCR.Language, cfg.OCR.Thresholds, cfg.OCR.PSMModes, cfg.OCR.MinWidth, logger)

	s := &Service{
		pre:      pre,
		variants: variants,
		zones:    recognize.NewZoneExtractor(pre, variants, logger),
		logger:   logger,
	}
	s.pdfSel = pdf.NewSelector(cfg.PDF, s, logger)
	if cfg.Vision.APIKey != "" {
		s.vision = vision.NewRecognizer(vision.NewClient(cfg.Vision, logger), pre, logger)
	}
	return s
}

// Recognize processes one document. Recognition quality degrades
// confidence rather than erroring; only an unreadable source or an
// unsupported extension comes back as an error.
func (s *Service) Recognize(ctx context.Context, req recognize.Request) (recognize.Result, error) {
	if _, err := os.Stat(req.Path); err != nil {
		return recognize.Result{}, common.NewAppError("SOURCE_ERROR",
			fmt.Sprintf("cannot read %q: %v", req.Path, err), common.ErrUnreadableSource)
	}
	format := constants.MapExtToFormat(filepath.Ext(req.Path))
	if format == "" {
		return recognize.Result{}, common.NewAppError("INPUT_ERROR",
			fmt.Sprintf("unsupported file extension %q", filepath.Ext(req.Path)), common.ErrInvalidInput)
	}

	if format == constants.PDF {
		return s.pdfSel.Extract(ctx, req.Path, req.DocType)
	}

	if req.Mode == recognize.ModeCloud && s.vision != nil {
		res, err := s.vision.Recognize(ctx, req.Path, req.DocType)
		if err == nil {
			return res, nil
		}
		s.logger.Warn("cloud vision failed, falling back to local engine",
			"path", req.Path, "error", err)
	}

	return s.recognizeImage(ctx, req.Path, req.DocType)
}

// RecognizePage runs the image pipeline over one rasterized PDF page.
func (s *Service) RecognizePage(ctx context.Context, imagePath string, docType constants.DocType) (recognize.Result, error) {
	return s.recognizeImage(ctx, imagePath, docType)
}

func (s *Service) recognizeImage(ctx context.Context, path string, hint constants.DocType) (recognize.Result, error) {
	res, err := s.variants.Recognize(ctx, path, hint)
	if err != nil {
		return recognize.Result{}, err
	}

	if res.DocType != constants.DocTypeUnknown && !fields.Complete(res.Fields, res.DocType) {
		enriched := s.zones.Enrich(ctx, path, res.DocType, res.Fields)
		if len(enriched) > len(res.Fields) {
			res.Fields = enriched
			res.Confidence = fields.Confidence(res.Text, enriched, res.DocType)
			res.Method = "multi-variant-ocr+zones"
			res.Status = recognize.StatusFor(enriched, res.DocType)
		}
	}
	return res, nil
}
