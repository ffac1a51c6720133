package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestToWebPShrinksLongSide(t *testing.T) {
	out, err := ToWebP(bytes.NewReader(pngOf(t, 1000, 500)), 200)
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestFitKeepsSmallImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 50, 80))
	assert.Same(t, src, Fit(src, 100))
}

func TestToWebPRejectsGarbage(t *testing.T) {
	_, err := ToWebP(bytes.NewReader([]byte("not an image")), 100)
	assert.Error(t, err)
}
