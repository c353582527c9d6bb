package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"path/filepath"
	"strings"

	// Registered decoders for image.Decode.
	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Processing defaults.
const (
	DefaultMaxBytes     = 5 << 20
	DefaultMaxDimension = 500
	DefaultJPEGQuality  = 85
	DefaultMaxPixels    = 40_000_000
)

// AllowedExtensions lists the accepted upload extensions.
var AllowedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// Processor normalizes uploaded images to JPEG.
type Processor struct {
	MaxBytes     int64
	MaxDimension int
	Quality      int
	// MaxPixels caps width*height of the decoded source image.
	MaxPixels int
}

// NewProcessor returns a Processor, substituting defaults for zero values.
func NewProcessor(maxBytes int64, maxDimension, quality int) *Processor {
	p := &Processor{MaxBytes: maxBytes, MaxDimension: maxDimension, Quality: quality, MaxPixels: DefaultMaxPixels}
	if p.MaxBytes <= 0 {
		p.MaxBytes = DefaultMaxBytes
	}
	if p.MaxDimension <= 0 {
		p.MaxDimension = DefaultMaxDimension
	}
	if p.Quality <= 0 || p.Quality > 100 {
		p.Quality = DefaultJPEGQuality
	}
	return p
}

// CheckExtension reports ErrUnsupportedType unless filename has an allowed
// extension. The comparison is case-insensitive.
func CheckExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: allowed types are %s", ErrUnsupportedType, strings.Join(AllowedExtensions, ", "))
}

// Process validates the upload, flattens any transparency onto white,
// shrinks it so neither side exceeds MaxDimension and encodes it as JPEG.
func (p *Processor) Process(filename string, data []byte) ([]byte, error) {
	if err := CheckExtension(filename); err != nil {
		return nil, err
	}
	if int64(len(data)) > p.MaxBytes {
		return nil, fmt.Errorf("%w: maximum size is %d MB", ErrTooLarge, p.MaxBytes>>20)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(p.MaxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, p.MaxPixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	img := resize(flatten(src), p.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten composites src over an opaque white canvas.
func flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// resize scales img down so its longest side is at most maxDim, keeping the
// aspect ratio. Smaller images are returned unchanged.
func resize(img *image.RGBA, maxDim int) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	nw, nh := maxDim, maxDim
	if w >= h {
		nh = max(1, h*maxDim/w)
	} else {
		nw = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
