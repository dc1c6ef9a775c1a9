package imageprocessor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func TestResizeIfNeeded(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"within limits", 100, 50, 200, 200, 100, 50},
		{"exact limits", 200, 100, 200, 100, 200, 100},
		{"too wide", 400, 100, 200, 200, 200, 50},
		{"too tall", 100, 400, 200, 200, 50, 200},
		{"both, height binds", 300, 300, 400, 150, 150, 150},
		{"truncates", 400, 151, 200, 200, 200, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ResizeIfNeeded(solid(tt.w, tt.h), tt.maxW, tt.maxH)
			assert.Equal(t, tt.wantW, out.Bounds().Dx())
			assert.Equal(t, tt.wantH, out.Bounds().Dy())
		})
	}
}

func TestResizeIfNeededReturnsSameImage(t *testing.T) {
	img := solid(10, 10)
	assert.Same(t, img, ResizeIfNeeded(img, 100, 100))
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(640, 480)))
	require.NoError(t, os.WriteFile(in, buf.Bytes(), 0o644))

	out := filepath.Join(dir, "out", "preview.jpg")
	require.NoError(t, NewProcessor(320, 320, 80).ProcessFile(in, out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	w, h, err := GetImageDimensions(f)
	require.NoError(t, err)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestProcessRejectsGarbage(t *testing.T) {
	_, err := NewProcessor(10, 10, 0).Process(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
