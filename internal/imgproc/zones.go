package imgproc

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Zone names a sub-region of a document image that is re-recognized when
// the full-image pass leaves fields empty.
type Zone string

const (
	ZoneTop        Zone = "top"         // top ~47%: issuing authority, issue date
	ZoneBottom     Zone = "bottom"      // bottom ~50%: name block
	ZoneMRZBand    Zone = "mrz"         // bottom ~18%: machine-readable zone
	ZoneRightStrip Zone = "right-strip" // right ~12%, rotated: vertical series/number
)

const (
	topFraction    = 0.47
	bottomFraction = 0.50
	mrzFraction    = 0.18
	stripFraction  = 0.12
)

// CropZone writes the requested sub-region of the source image to a temp
// file and returns its path. The right strip is rotated 90 degrees so its
// vertically printed digits read horizontally.
func (p *Preprocessor) CropZone(path string, zone Zone) (string, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("open image %q: %w", path, err)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	var rect image.Rectangle
	switch zone {
	case ZoneTop:
		rect = image.Rect(0, 0, w, int(float64(h)*topFraction))
	case ZoneBottom:
		rect = image.Rect(0, h-int(float64(h)*bottomFraction), w, h)
	case ZoneMRZBand:
		rect = image.Rect(0, h-int(float64(h)*mrzFraction), w, h)
	case ZoneRightStrip:
		rect = image.Rect(w-int(float64(w)*stripFraction), 0, w, h)
	default:
		return "", fmt.Errorf("unknown zone %q", zone)
	}

	img := imaging.Crop(src, rect)
	if zone == ZoneRightStrip {
		img = imaging.Rotate90(img)
	}

	out := p.tmpPath("zone-" + string(zone))
	if err := imaging.Save(img, out); err != nil {
		return "", fmt.Errorf("save zone crop: %w", err)
	}
	return out, nil
}
