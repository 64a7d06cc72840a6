package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/common"
	"github.com/pravodoc/docrecog/internal/fields"
	"github.com/pravodoc/docrecog/internal/recognize"
)

// minUsefulText is the success threshold for a strategy: anything at or
// below this is treated as noise and the chain moves on.
const minUsefulText = 20

// PageRecognizer runs the image pipeline over one rasterized page.
type PageRecognizer interface {
	RecognizePage(ctx context.Context, imagePath string, docType constants.DocType) (recognize.Result, error)
}

// Selector walks the PDF extraction strategies in fixed order: external
// OCR helper, embedded text layer, rasterize-and-recognize. A document
// that defeats all three comes back UNEXTRACTED with a retention
// deadline instead of an error.
type Selector struct {
	external   *ExternalOCRTool
	textLayer  *TextLayerTool
	rasterizer *Rasterizer
	pages      PageRecognizer
	sizeCapMB  int64
	maxPages   int
	retention  time.Duration
	logger     *slog.Logger
}

func NewSelector(cfg common.PDFConfig, pages PageRecognizer, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		external:   NewExternalOCRTool(cfg.OCRTool, nil),
		textLayer:  NewTextLayerTool(cfg.Pdftotext, nil),
		rasterizer: NewRasterizer(cfg.Pdftoppm, cfg.DPI, nil),
		pages:      pages,
		sizeCapMB:  cfg.SizeCapMB,
		maxPages:   cfg.MaxPages,
		retention:  cfg.Retention,
		logger:     logger,
	}
}

// Extract runs the strategy chain. Only an unreadable source file is an
// error; every extraction failure degrades to the next strategy.
func (s *Selector) Extract(ctx context.Context, path string, hint constants.DocType) (recognize.Result, error) {
	if _, err := os.Stat(path); err != nil {
		return recognize.Result{}, common.NewAppError("SOURCE_ERROR",
			fmt.Sprintf("cannot read %q: %v", path, err), common.ErrUnreadableSource)
	}

	for _, tool := range []ToolAdapter{s.external, s.textLayer} {
		if tool == s.textLayer && s.overSizeCap(path) {
			s.logger.Info("skipping text layer, file over size cap", "path", path, "cap_mb", s.sizeCapMB)
			continue
		}
		if !tool.IsAvailable(ctx) {
			continue
		}
		text, err := tool.Invoke(ctx, path)
		if err != nil {
			s.logger.Warn("pdf strategy failed", "strategy", tool.Name(), "error", err)
			continue
		}
		if len(text) <= minUsefulText {
			s.logger.Debug("pdf strategy yielded no usable text", "strategy", tool.Name(), "len", len(text))
			continue
		}
		return s.textResult(text, hint, tool.Name()), nil
	}

	if s.rasterizer.IsAvailable(ctx) && s.pages != nil {
		res, err := s.recognizeRaster(ctx, path, hint)
		if err != nil {
			s.logger.Warn("pdf strategy failed", "strategy", "pdf-raster-ocr", "error", err)
		} else if len(res.Text) > minUsefulText {
			return res, nil
		}
	}

	s.logger.Info("all pdf strategies exhausted", "path", path)
	return recognize.Result{
		DocType:     hint,
		Fields:      fields.Set{},
		Confidence:  0,
		Method:      "none",
		Status:      constants.StatusUnextracted,
		RetainUntil: time.Now().Add(s.retention),
	}, nil
}

func (s *Selector) overSizeCap(path string) bool {
	if s.sizeCapMB <= 0 {
		return false
	}
	size, err := fileSizeMB(path)
	if err != nil {
		return false
	}
	return size > s.sizeCapMB
}

// textResult scores tool-extracted text the same way the image path does.
func (s *Selector) textResult(text string, hint constants.DocType, method string) recognize.Result {
	docType := hint
	if docType == "" || docType == constants.DocTypeUnknown {
		docType = fields.DetectDocType(text)
	}
	set := fields.Extract(text, docType)
	return recognize.Result{
		DocType:    docType,
		Fields:     set,
		Confidence: fields.Confidence(text, set, docType),
		Text:       text,
		Method:     method,
		Status:     recognize.StatusFor(set, docType),
	}
}

// recognizeRaster renders every page and runs the image pipeline on each.
// Page texts are joined with numbered separators; fields merge
// first-non-empty across pages and confidence is the page average.
func (s *Selector) recognizeRaster(ctx context.Context, path string, hint constants.DocType) (recognize.Result, error) {
	dir, err := os.MkdirTemp("", "docrecog-raster-")
	if err != nil {
		return recognize.Result{}, err
	}
	defer os.RemoveAll(dir)

	pages, err := s.rasterizer.Render(ctx, path, dir)
	if err != nil {
		return recognize.Result{}, err
	}
	if s.maxPages > 0 && len(pages) > s.maxPages {
		pages = pages[:s.maxPages]
	}

	merged := fields.Set{}
	var parts []string
	var confSum float32
	docType := hint

	for i, page := range pages {
		res, err := s.pages.RecognizePage(ctx, page, hint)
		if err != nil {
			s.logger.Warn("page recognition failed", "page", i+1, "error", err)
			parts = append(parts, fmt.Sprintf("--- Страница %d ---", i+1))
			continue
		}
		parts = append(parts, fmt.Sprintf("--- Страница %d ---\n%s", i+1, res.Text))
		merged.Merge(res.Fields)
		confSum += res.Confidence
		if docType == "" || docType == constants.DocTypeUnknown {
			docType = res.DocType
		}
	}

	var conf float32
	if len(pages) > 0 {
		conf = confSum / float32(len(pages))
	}

	return recognize.Result{
		DocType:    docType,
		Fields:     merged,
		Confidence: conf,
		Text:       strings.Join(parts, "\n\n"),
		Method:     "pdf-raster-ocr",
		Status:     recognize.StatusFor(merged, docType),
	}, nil
}
