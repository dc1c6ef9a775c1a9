package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Processor shrinks previews to the configured envelope and re-encodes them
// as JPEG.
type Processor struct {
	maxWidth  int
	maxHeight int
	quality   int // JPEG quality (1-100)
}

func NewProcessor(maxWidth, maxHeight, quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{maxWidth: maxWidth, maxHeight: maxHeight, quality: quality}
}

// ResizeIfNeeded scales img down, preserving the aspect ratio, when either
// side exceeds its limit. Smaller images are returned unchanged.
func ResizeIfNeeded(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return img
	}
	if width <= maxWidth && height <= maxHeight {
		return img
	}

	ratio := min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	newWidth := max(int(float64(width)*ratio), 1)
	newHeight := max(int(float64(height)*ratio), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Process decodes r, resizes it and returns the JPEG encoding.
func (p *Processor) Process(r io.Reader) (*bytes.Buffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	resized := ResizeIfNeeded(img, p.maxWidth, p.maxHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return &buf, nil
}

// ProcessFile resizes the image at in and writes a JPEG to out. in and out
// may be the same path.
func (p *Processor) ProcessFile(in, out string) error {
	src, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	buf, err := p.Process(src)
	src.Close()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}
	return os.WriteFile(out, buf.Bytes(), 0o644)
}

// GetImageDimensions returns the dimensions of an image
func GetImageDimensions(reader io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(reader)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
