package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register the PNG decoder for image.Decode
	"io"
	"net/http"

	"github.com/disintegration/imaging"
)

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"

	thumbnailQuality = 80
)

// ImageProcessor sniffs uploaded images and renders thumbnails.
type ImageProcessor struct{}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{}
}

// DetectType returns the content type of data judged from its leading
// bytes, ignoring whatever the client declared.
func (p *ImageProcessor) DetectType(data []byte) string {
	return http.DetectContentType(data)
}

// Extension returns the file extension stored objects of contentType get.
func Extension(contentType string) string {
	switch contentType {
	case ContentTypeJPEG:
		return ".jpg"
	case ContentTypePNG:
		return ".png"
	}
	return ""
}

// GenerateThumbnail fits the image inside maxWidth x maxHeight and returns
// it encoded as JPEG.
func (p *ImageProcessor) GenerateThumbnail(content io.Reader, maxWidth, maxHeight int) (io.Reader, error) {
	img, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumbnail := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, thumbnail, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return buf, nil
}
