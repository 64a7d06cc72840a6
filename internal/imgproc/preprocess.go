package imgproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Params control the deterministic preprocessing chain for the local path.
type Params struct {
	Threshold uint8 // binarization cut; 0 disables binarization
	MinWidth  int   // upscale narrower images to this width; 0 disables
}

// Result is a preprocessed raster on disk plus the transforms applied,
// in order. The caller owns the file and removes it when done.
type Result struct {
	Path    string
	Applied []string
}

type Preprocessor struct {
	tmpDir string
	logger *slog.Logger
}

func NewPreprocessor(tmpDir string, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &Preprocessor{tmpDir: tmpDir, logger: logger}
}

// Preprocess runs the fixed normalization chain:
// auto-orient, upscale, grayscale, contrast stretch, median denoise,
// mild blur, sharpen, binarize. The input file is never mutated.
// A missing or unreadable source propagates as an error.
func (p *Preprocessor) Preprocess(path string, params Params) (Result, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, fmt.Errorf("open image %q: %w", path, err)
	}
	applied := []string{"auto-orient"}

	img := imaging.Clone(src)
	if params.MinWidth > 0 && img.Bounds().Dx() < params.MinWidth {
		img = imaging.Resize(img, params.MinWidth, 0, imaging.Lanczos)
		applied = append(applied, fmt.Sprintf("upscale-%d", params.MinWidth))
	}
	img = imaging.Grayscale(img)
	applied = append(applied, "grayscale")
	img = imaging.AdjustContrast(img, 20)
	applied = append(applied, "contrast")
	img = medianFilter3x3(img)
	applied = append(applied, "median-denoise")
	img = imaging.Blur(img, 0.5)
	applied = append(applied, "blur")
	img = imaging.Sharpen(img, 1.0)
	applied = append(applied, "sharpen")
	if params.Threshold > 0 {
		img = binarize(img, params.Threshold)
		applied = append(applied, fmt.Sprintf("binarize-%d", params.Threshold))
	}

	out := p.tmpPath("pre")
	if err := imaging.Save(img, out); err != nil {
		return Result{}, fmt.Errorf("save preprocessed image: %w", err)
	}
	p.logger.Debug("image preprocessed", "src", path, "out", out, "applied", applied)
	return Result{Path: out, Applied: applied}, nil
}

// PrepareForVision produces the JPEG payload sent to a cloud vision model:
// fit within 2000px, normalize contrast, sharpen, grayscale, slight
// brightness lift, quality 95.
func (p *Preprocessor) PrepareForVision(path string) ([]byte, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	img := imaging.Fit(src, 2000, 2000, imaging.Lanczos)
	img = imaging.AdjustContrast(img, 10)
	img = imaging.Sharpen(img, 1.0)
	img = imaging.Grayscale(img)
	img = imaging.AdjustBrightness(img, 10)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		return nil, fmt.Errorf("encode vision image: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Preprocessor) tmpPath(tag string) string {
	return filepath.Join(p.tmpDir, fmt.Sprintf("docrecog-%s-%s.png", tag, uuid.NewString()))
}

// binarize applies a hard threshold on the red channel (the image is
// already grayscale at this point in the chain).
func binarize(img *image.NRGBA, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := imaging.Clone(img)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := out.NRGBAAt(x, y)
			v := uint8(0)
			if c.R >= threshold {
				v = 255
			}
			out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: c.A})
		}
	}
	return out
}

// medianFilter3x3 is a mild salt-and-pepper denoise over the gray channel.
func medianFilter3x3(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	out := imaging.Clone(img)
	var window [9]uint8
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			i := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					window[i] = img.NRGBAAt(x+dx, y+dy).R
					i++
				}
			}
			m := median9(window)
			a := img.NRGBAAt(x, y).A
			out.SetNRGBA(x, y, color.NRGBA{R: m, G: m, B: m, A: a})
		}
	}
	return out
}

func median9(w [9]uint8) uint8 {
	// insertion sort; the window is tiny
	for i := 1; i < len(w); i++ {
		for j := i; j > 0 && w[j-1] > w[j]; j-- {
			w[j-1], w[j] = w[j], w[j-1]
		}
	}
	return w[4]
}
