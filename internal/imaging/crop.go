package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// CropRegion restricts img to r for detection on a region of interest.
//
// Images that support SubImage are sliced without copying and keep their
// pixel depth; others are copied with imaging.Crop. Detection works in the
// result's own pixel grid, so add the returned offset to any star found in
// it to get coordinates in img.
func CropRegion(img image.Image, r Region) (image.Image, image.Point, error) {
	bounds := img.Bounds()
	rect := r.Rect()

	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, image.Point{}, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	if !rect.In(bounds) {
		return nil, image.Point{}, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect), rect.Min, nil
	}
	return imaging.Crop(img, rect), rect.Min, nil
}

// ImageResult is an encoded PNG ready to return to a client.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG. When maxWidth is positive and img is
// wider, it is first downscaled to maxWidth keeping the aspect ratio.
func EncodePNG(img image.Image, maxWidth int) (*ImageResult, error) {
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &ImageResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
