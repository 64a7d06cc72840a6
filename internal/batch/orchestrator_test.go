package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/common"
	"github.com/pravodoc/docrecog/internal/fields"
	"github.com/pravodoc/docrecog/internal/recognize"
)

// fakeRecognizer records concurrency and fails for selected paths.
type fakeRecognizer struct {
	mu          sync.Mutex
	inflight    int
	maxInflight int
	failPaths   map[string]bool
	results     map[string]recognize.Result
}

func (f *fakeRecognizer) Recognize(_ context.Context, req recognize.Request) (recognize.Result, error) {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inflight--
	f.mu.Unlock()

	if f.failPaths[req.Path] {
		return recognize.Result{}, errors.New("scan failed")
	}
	if res, ok := f.results[req.Path]; ok {
		return res, nil
	}
	return recognize.Result{
		DocType:    req.DocType,
		Fields:     fields.Set{},
		Confidence: 0.5,
		Text:       req.Path,
		Status:     constants.StatusPartial,
	}, nil
}

func newOrchestrator(rec DocRecognizer, window int) *Orchestrator {
	return NewOrchestrator(rec, common.BatchConfig{
		WindowSize:  window,
		WindowDelay: time.Millisecond,
	}, nil)
}

func TestRecognizeEachPreservesOrderAndCount(t *testing.T) {
	paths := []string{"a.png", "b.png", "c.png", "d.png", "e.png"}
	rec := &fakeRecognizer{}
	o := newOrchestrator(rec, 3)

	results := o.RecognizeEach(context.Background(), paths, constants.DocTypePassport, recognize.ModeLocal)

	require.Len(t, results, len(paths))
	for i, p := range paths {
		assert.Equal(t, p, results[i].Text, "result %d must correspond to input %d", i, i)
	}
}

func TestRecognizeEachRespectsWindowSize(t *testing.T) {
	paths := []string{"a", "b", "c", "d", "e", "f", "g"}
	rec := &fakeRecognizer{}
	o := newOrchestrator(rec, 3)

	o.RecognizeEach(context.Background(), paths, constants.DocTypeUnknown, recognize.ModeLocal)

	assert.LessOrEqual(t, rec.maxInflight, 3, "never more than one window in flight")
	assert.Greater(t, rec.maxInflight, 1, "a window runs concurrently")
}

func TestRecognizeEachFailureYieldsPlaceholder(t *testing.T) {
	paths := []string{"a.png", "b.png", "c.png", "d.png", "e.png"}
	rec := &fakeRecognizer{failPaths: map[string]bool{"c.png": true}}
	o := newOrchestrator(rec, 3)

	results := o.RecognizeEach(context.Background(), paths, constants.DocTypePassport, recognize.ModeLocal)

	require.Len(t, results, 5)
	assert.Zero(t, results[2].Confidence)
	assert.Equal(t, constants.StatusUnextracted, results[2].Status)
	assert.Equal(t, "failed", results[2].Method)
	for _, i := range []int{0, 1, 3, 4} {
		assert.Equal(t, float32(0.5), results[i].Confidence, "item %d unaffected by the failure", i)
	}
}

func TestRecognizeCombinedMergesPages(t *testing.T) {
	rec := &fakeRecognizer{results: map[string]recognize.Result{
		"p1.png": {
			DocType:    constants.DocTypePassport,
			Fields:     fields.Set{"series": "0320"},
			Confidence: 0.8,
			Text:       "первая страница",
		},
		"p2.png": {
			DocType:    constants.DocTypePassport,
			Fields:     fields.Set{"series": "9999", "number": "706987"},
			Confidence: 0.4,
			Text:       "вторая страница",
		},
	}}
	o := newOrchestrator(rec, 3)

	res := o.RecognizeCombined(context.Background(), []string{"p1.png", "p2.png"},
		constants.DocTypePassport, recognize.ModeLocal)

	assert.Equal(t, "0320", res.Fields["series"], "first non-empty value wins across pages")
	assert.Equal(t, "706987", res.Fields["number"])
	assert.InDelta(t, 0.6, res.Confidence, 0.001, "confidence is the page average")
	assert.Contains(t, res.Text, "--- Страница 1 ---")
	assert.Contains(t, res.Text, "--- Страница 2 ---")
	assert.Contains(t, res.Text, "вторая страница")
}

func TestRecognizeEachEmptyInput(t *testing.T) {
	o := newOrchestrator(&fakeRecognizer{}, 3)
	assert.Empty(t, o.RecognizeEach(context.Background(), nil, constants.DocTypeUnknown, recognize.ModeLocal))
}
