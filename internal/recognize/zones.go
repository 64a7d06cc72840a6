package recognize

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/fields"
	"github.com/pravodoc/docrecog/internal/imgproc"
	"github.com/pravodoc/docrecog/internal/mrz"
	"github.com/pravodoc/docrecog/internal/ocr"
)

// zoneStrategy re-recognizes one sub-region of the document to recover
// specific fields the full-image pass missed. Strategies run in a fixed
// order and only ever fill empty slots.
type zoneStrategy struct {
	name     string
	zone     imgproc.Zone
	provides []string
	run      func(ctx context.Context, z *ZoneExtractor, cropPath string, docType constants.DocType) (fields.Set, error)
}

// ZoneExtractor walks the strategy chain over a cropped copy of the
// source image for every strategy that could still contribute a field.
type ZoneExtractor struct {
	pre      *imgproc.Preprocessor
	variants *VariantRecognizer
	logger   *slog.Logger
	chain    []zoneStrategy
}

func NewZoneExtractor(pre *imgproc.Preprocessor, variants *VariantRecognizer, logger *slog.Logger) *ZoneExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	z := &ZoneExtractor{pre: pre, variants: variants, logger: logger}
	z.chain = []zoneStrategy{
		{
			name:     "upper-zone",
			zone:     imgproc.ZoneTop,
			provides: []string{"issuedBy", "issueDate", "departmentCode"},
			run:      runZoneVariants,
		},
		{
			name:     "lower-zone",
			zone:     imgproc.ZoneBottom,
			provides: []string{"lastName", "firstName", "middleName", "birthDate", "birthPlace"},
			run:      runZoneVariants,
		},
		{
			name:     "right-strip",
			zone:     imgproc.ZoneRightStrip,
			provides: []string{"series", "number"},
			run:      runRightStrip,
		},
		{
			name:     "mrz-band",
			zone:     imgproc.ZoneMRZBand,
			provides: []string{"lastName", "firstName", "middleName", "series", "number"},
			run:      runMRZBand,
		},
	}
	return z
}

// Enrich fills missing fields in set from zone passes. The parent set is
// authoritative: a zone value never overwrites an existing one. Zone
// failures are logged and skipped; enrichment is best-effort by nature.
func (z *ZoneExtractor) Enrich(ctx context.Context, imagePath string, docType constants.DocType, set fields.Set) fields.Set {
	out := set.Clone()
	for _, s := range z.chain {
		if !missingAny(out, s.provides) {
			continue
		}
		crop, err := z.pre.CropZone(imagePath, s.zone)
		if err != nil {
			z.logger.Warn("zone crop failed", "strategy", s.name, "error", err)
			continue
		}
		got, err := s.run(ctx, z, crop, docType)
		_ = os.Remove(crop)
		if err != nil {
			z.logger.Warn("zone strategy failed", "strategy", s.name, "error", err)
			continue
		}
		before := len(out)
		out.Merge(got)
		if len(out) > before {
			z.logger.Debug("zone strategy recovered fields",
				"strategy", s.name, "recovered", len(out)-before)
		}
	}
	return out
}

func missingAny(set fields.Set, names []string) bool {
	for _, n := range names {
		if _, ok := set[n]; !ok {
			return true
		}
	}
	return false
}

// runZoneVariants reuses the full variant grid on the crop; zones are
// small, so the extra passes stay cheap.
func runZoneVariants(ctx context.Context, z *ZoneExtractor, cropPath string, docType constants.DocType) (fields.Set, error) {
	res, err := z.variants.Recognize(ctx, cropPath, docType)
	if err != nil {
		return nil, err
	}
	return res.Fields, nil
}

// reStripDigits matches the vertically printed passport series and number
// on the right edge: two 2-digit series groups and a 6-digit number.
var reStripDigits = regexp.MustCompile(`(\d{2})\s*(\d{2})\s*(\d{6})`)

// runRightStrip recognizes the rotated right-edge strip with a digit
// whitelist and parses the series/number run directly.
func runRightStrip(ctx context.Context, z *ZoneExtractor, cropPath string, _ constants.DocType) (fields.Set, error) {
	text, err := z.variants.RecognizeOnce(ctx, cropPath, ocr.Options{
		PSM:       6,
		Whitelist: "0123456789 ",
	})
	if err != nil {
		return nil, err
	}
	m := reStripDigits.FindStringSubmatch(text)
	if m == nil {
		return fields.Set{}, nil
	}
	return fields.Set{
		"series": m[1] + m[2],
		"number": m[3],
	}, nil
}

// runMRZBand recognizes the machine-readable band with the restricted
// character set and decodes it.
func runMRZBand(ctx context.Context, z *ZoneExtractor, cropPath string, _ constants.DocType) (fields.Set, error) {
	text, err := z.variants.RecognizeOnce(ctx, cropPath, ocr.Options{
		Language:  "eng",
		PSM:       6,
		Whitelist: mrz.Whitelist,
	})
	if err != nil {
		return nil, err
	}
	return mrz.Decode(strings.ToUpper(text)), nil
}
