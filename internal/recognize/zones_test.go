package recognize

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/fields"
	"github.com/pravodoc/docrecog/internal/imgproc"
	"github.com/pravodoc/docrecog/internal/mrz"
	"github.com/pravodoc/docrecog/internal/ocr"
)

// whitelistEngine answers by recognition pass kind: restricted digit and
// MRZ passes get fixed payloads, everything else gets the free text.
type whitelistEngine struct {
	mu       sync.Mutex
	freeText string
	digits   string
	mrzLine  string
}

func (e *whitelistEngine) Recognize(_ context.Context, _ string, opts ocr.Options) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case strings.Contains(opts.Whitelist, "<"):
		return e.mrzLine, nil
	case opts.Whitelist != "":
		return e.digits, nil
	default:
		return e.freeText, nil
	}
}

func newTestZones(t *testing.T, engine ocr.Engine) *ZoneExtractor {
	t.Helper()
	pre := imgproc.NewPreprocessor(t.TempDir(), nil)
	variants := NewVariantRecognizer(pre, engine, "rus+eng", []int{140}, []int{6}, 0, nil)
	return NewZoneExtractor(pre, variants, nil)
}

func TestEnrichFillsOnlyMissingFields(t *testing.T) {
	engine := &whitelistEngine{
		freeText: "Иванов Петр Сергеевич",
		digits:   "03 20 706987",
	}
	z := newTestZones(t, engine)

	parent := fields.Set{"lastName": "Петров"}
	got := z.Enrich(context.Background(), writeTestImage(t), constants.DocTypePassport, parent)

	assert.Equal(t, "Петров", got["lastName"], "zone values never overwrite the parent")
	assert.Equal(t, "Петр", got["firstName"])
	assert.Equal(t, "Сергеевич", got["middleName"])
	assert.Equal(t, "Петров", parent["lastName"], "parent set is not mutated")
}

func TestEnrichRightStripDigits(t *testing.T) {
	engine := &whitelistEngine{digits: "03 20 706987"}
	z := newTestZones(t, engine)

	got := z.Enrich(context.Background(), writeTestImage(t), constants.DocTypePassport, fields.Set{})

	assert.Equal(t, "0320", got["series"])
	assert.Equal(t, "706987", got["number"])
}

func TestEnrichMRZBandIsLastResort(t *testing.T) {
	engine := &whitelistEngine{
		mrzLine: "P<RUSBUTKO<<ARTEM<MIKHAILOVICH<<<<<<<<<<<<<<",
	}
	z := newTestZones(t, engine)

	got := z.Enrich(context.Background(), writeTestImage(t), constants.DocTypePassport, fields.Set{})

	assert.Equal(t, "БУТКО", got["lastName"])
	assert.Equal(t, "АРТЕМ", got["firstName"])
	assert.Equal(t, "МИХАИЛОВИЧ", got["middleName"])
}

func TestEnrichSkipsWhenComplete(t *testing.T) {
	engine := &whitelistEngine{freeText: "Сидоров Иван Иванович"}
	z := newTestZones(t, engine)

	full := fields.Set{}
	for _, s := range z.chain {
		for _, f := range s.provides {
			full[f] = "x"
		}
	}
	got := z.Enrich(context.Background(), writeTestImage(t), constants.DocTypePassport, full)
	assert.Equal(t, full, got)
}

func TestMRZWhitelistRoundTrip(t *testing.T) {
	// guard: the restricted pass must request the decoder's character set
	require.Contains(t, mrz.Whitelist, "<")
	require.Contains(t, mrz.Whitelist, "0")
}
