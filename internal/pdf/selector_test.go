package pdf

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/common"
	"github.com/pravodoc/docrecog/internal/fields"
	"github.com/pravodoc/docrecog/internal/recognize"
)

const pdfText = "ПАСПОРТ гражданина РФ Серия 03 20 Номер 706987 Иванов Петр Сергеевич"

// cannedRunner returns fixed stdout; when pageCount > 0 it also fakes
// pdftoppm by creating that many page files next to the given prefix.
type cannedRunner struct {
	out       string
	pageCount int
}

func (r *cannedRunner) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	if r.pageCount > 0 {
		prefix := args[len(args)-1]
		for i := 1; i <= r.pageCount; i++ {
			f, err := os.Create(prefix + "-" + string(rune('0'+i)) + ".png")
			if err != nil {
				return nil, nil, err
			}
			_ = f.Close()
		}
	}
	return []byte(r.out), nil, nil
}

type cannedPages struct {
	results []recognize.Result
	calls   int
}

func (p *cannedPages) RecognizePage(context.Context, string, constants.DocType) (recognize.Result, error) {
	res := p.results[p.calls%len(p.results)]
	p.calls++
	return res, nil
}

func writeTestPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644))
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSelector() *Selector {
	return &Selector{
		external:   NewExternalOCRTool("", nil),
		textLayer:  NewTextLayerTool("definitely-missing-pdftotext", nil),
		rasterizer: NewRasterizer("definitely-missing-pdftoppm", 300, nil),
		retention:  72 * time.Hour,
		logger:     discardLogger(),
	}
}

func TestExtractMissingFileIsError(t *testing.T) {
	s := NewSelector(common.PDFConfig{Retention: time.Hour}, nil, nil)
	_, err := s.Extract(context.Background(), "/no/such/file.pdf", constants.DocTypePassport)
	assert.ErrorIs(t, err, common.ErrUnreadableSource)
}

func TestExtractExhaustedChainIsUnextracted(t *testing.T) {
	s := newTestSelector()
	s.logger = discardLogger()

	before := time.Now()
	res, err := s.Extract(context.Background(), writeTestPDF(t), constants.DocTypePassport)
	require.NoError(t, err, "an unrecognizable document is a degraded result, not an error")

	assert.Equal(t, constants.StatusUnextracted, res.Status)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Fields)
	assert.WithinRange(t, res.RetainUntil, before.Add(72*time.Hour), time.Now().Add(72*time.Hour))
}

func TestExtractTextLayerWins(t *testing.T) {
	s := newTestSelector()
	s.logger = discardLogger()
	s.textLayer = NewTextLayerTool("sh", &cannedRunner{out: pdfText})

	res, err := s.Extract(context.Background(), writeTestPDF(t), constants.DocTypePassport)
	require.NoError(t, err)

	assert.Equal(t, "pdf-text-layer", res.Method)
	assert.Equal(t, "0320", res.Fields["series"])
	assert.Equal(t, "706987", res.Fields["number"])
	assert.Greater(t, res.Confidence, float32(0.5))
}

func TestExtractExternalToolTakesPrecedence(t *testing.T) {
	s := newTestSelector()
	s.logger = discardLogger()
	s.external = NewExternalOCRTool("sh", &cannedRunner{out: pdfText})
	s.textLayer = NewTextLayerTool("sh", &cannedRunner{out: "другой текст, который не должен использоваться"})

	res, err := s.Extract(context.Background(), writeTestPDF(t), constants.DocTypePassport)
	require.NoError(t, err)
	assert.Equal(t, "pdf-external-tool", res.Method)
}

func TestExtractShortTextFallsThrough(t *testing.T) {
	s := newTestSelector()
	s.logger = discardLogger()
	s.textLayer = NewTextLayerTool("sh", &cannedRunner{out: "мусор"})

	res, err := s.Extract(context.Background(), writeTestPDF(t), constants.DocTypePassport)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusUnextracted, res.Status, "20 chars or less never counts as success")
}

func TestExtractRasterFallback(t *testing.T) {
	pages := &cannedPages{results: []recognize.Result{
		{
			DocType:    constants.DocTypePassport,
			Fields:     fields.Set{"series": "0320"},
			Confidence: 0.9,
			Text:       "первая страница паспорта с серией",
		},
		{
			DocType:    constants.DocTypePassport,
			Fields:     fields.Set{"number": "706987"},
			Confidence: 0.5,
			Text:       "вторая страница паспорта с номером",
		},
	}}
	s := newTestSelector()
	s.logger = discardLogger()
	s.rasterizer = NewRasterizer("sh", 300, &cannedRunner{pageCount: 2})
	s.pages = pages

	res, err := s.Extract(context.Background(), writeTestPDF(t), constants.DocTypePassport)
	require.NoError(t, err)

	assert.Equal(t, "pdf-raster-ocr", res.Method)
	assert.Equal(t, 2, pages.calls)
	assert.Equal(t, "0320", res.Fields["series"])
	assert.Equal(t, "706987", res.Fields["number"])
	assert.InDelta(t, 0.7, res.Confidence, 0.001)
	assert.Contains(t, res.Text, "--- Страница 1 ---")
	assert.Contains(t, res.Text, "--- Страница 2 ---")
}

func TestSizeCapSkipsTextLayer(t *testing.T) {
	s := newTestSelector()
	s.logger = discardLogger()
	s.sizeCapMB = 1
	s.textLayer = NewTextLayerTool("sh", &cannedRunner{out: pdfText})

	path := filepath.Join(t.TempDir(), "big.pdf")
	require.NoError(t, os.WriteFile(path, make([]byte, 3<<20), 0o644))

	res, err := s.Extract(context.Background(), path, constants.DocTypePassport)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusUnextracted, res.Status, "oversized files skip the text layer")
}
