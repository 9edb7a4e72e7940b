package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerateThumbnail(t *testing.T) {
	p := NewImageProcessor()

	thumb, err := p.GenerateThumbnail(bytes.NewReader(testPNG(t, 800, 400)), 200, 200)
	require.NoError(t, err)

	img, err := jpeg.Decode(thumb)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestGenerateThumbnailRejectsNonImages(t *testing.T) {
	_, err := NewImageProcessor().GenerateThumbnail(bytes.NewReader([]byte("%PDF-1.7")), 200, 200)
	assert.Error(t, err)
}

func TestDetectType(t *testing.T) {
	p := NewImageProcessor()

	assert.Equal(t, ContentTypePNG, p.DetectType(testPNG(t, 4, 4)))

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4)), nil))
	assert.Equal(t, ContentTypeJPEG, p.DetectType(buf.Bytes()))

	assert.NotEqual(t, ContentTypePNG, p.DetectType([]byte("<html></html>")))
	assert.Equal(t, ".jpg", Extension(ContentTypeJPEG))
	assert.Equal(t, ".png", Extension(ContentTypePNG))
	assert.Empty(t, Extension("application/pdf"))
}
