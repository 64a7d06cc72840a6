package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/common"
	"github.com/pravodoc/docrecog/internal/fields"
	"github.com/pravodoc/docrecog/internal/recognize"
)

// DocRecognizer is the single-document pipeline the orchestrator fans
// out over.
type DocRecognizer interface {
	Recognize(ctx context.Context, req recognize.Request) (recognize.Result, error)
}

// Orchestrator processes document batches in fixed lockstep windows:
// at most WindowSize documents in flight, a full join after each window,
// and a short pause before the next one. The pause keeps bursts against
// rate-limited cloud providers spread out.
type Orchestrator struct {
	rec         DocRecognizer
	windowSize  int
	windowDelay time.Duration
	logger      *slog.Logger
}

func NewOrchestrator(rec DocRecognizer, cfg common.BatchConfig, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	windowSize := cfg.WindowSize
	if windowSize <= 0 {
		windowSize = 3
	}
	return &Orchestrator{
		rec:         rec,
		windowSize:  windowSize,
		windowDelay: cfg.WindowDelay,
		logger:      logger,
	}
}

// RecognizeEach returns exactly one result per input path, in input
// order. A document that fails completely yields a zero-confidence
// placeholder; one bad scan never aborts the batch.
func (o *Orchestrator) RecognizeEach(ctx context.Context, paths []string, docType constants.DocType, mode recognize.Mode) []recognize.Result {
	results := make([]recognize.Result, len(paths))

	for start := 0; start < len(paths); start += o.windowSize {
		end := start + o.windowSize
		if end > len(paths) {
			end = len(paths)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := o.rec.Recognize(ctx, recognize.Request{
					Path:    paths[i],
					DocType: docType,
					Mode:    mode,
				})
				if err != nil {
					o.logger.Warn("batch item failed",
						"index", i, "path", paths[i], "error", err)
					results[i] = recognize.Placeholder(docType)
					return
				}
				results[i] = res
			}(i)
		}
		wg.Wait()

		if end < len(paths) && o.windowDelay > 0 {
			select {
			case <-ctx.Done():
				for i := end; i < len(paths); i++ {
					results[i] = recognize.Placeholder(docType)
				}
				return results
			case <-time.After(o.windowDelay):
			}
		}
	}

	return results
}

// RecognizeCombined treats the inputs as pages of one logical document:
// texts join under numbered separators, fields merge first-non-empty in
// input order, confidence is the per-page average.
func (o *Orchestrator) RecognizeCombined(ctx context.Context, paths []string, docType constants.DocType, mode recognize.Mode) recognize.Result {
	each := o.RecognizeEach(ctx, paths, docType, mode)

	merged := fields.Set{}
	var parts []string
	var confSum float32
	resolved := docType

	for i, res := range each {
		parts = append(parts, fmt.Sprintf("--- Страница %d ---\n%s", i+1, res.Text))
		merged.Merge(res.Fields)
		confSum += res.Confidence
		if resolved == "" || resolved == constants.DocTypeUnknown {
			resolved = res.DocType
		}
	}

	var conf float32
	if len(each) > 0 {
		conf = confSum / float32(len(each))
	}

	return recognize.Result{
		DocType:    resolved,
		Fields:     merged,
		Confidence: conf,
		Text:       strings.Join(parts, "\n\n"),
		Method:     "batch-combined",
		Status:     recognize.StatusFor(merged, resolved),
	}
}
