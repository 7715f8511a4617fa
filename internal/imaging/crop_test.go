package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func decodePreview(t *testing.T, r *ImageResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func TestCropRegion_SubImage(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 100, 80))
	img.SetGray16(30, 40, color.Gray16{Y: 50000})

	cropped, offset, err := CropRegion(img, Region{X1: 20, Y1: 30, X2: 60, Y2: 70})
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if offset != (image.Point{X: 20, Y: 30}) {
		t.Errorf("offset: got %v, want (20,30)", offset)
	}
	g16, ok := cropped.(*image.Gray16)
	if !ok {
		t.Fatalf("crop lost pixel depth: got %T", cropped)
	}
	if g16.Bounds().Dx() != 40 || g16.Bounds().Dy() != 40 {
		t.Errorf("size: got %v", g16.Bounds())
	}
	if g16.Gray16At(30, 40).Y != 50000 {
		t.Error("sub-image should share the parent's pixels")
	}
}

// plain implements image.Image without SubImage.
type plain struct{ image.Image }

func TestCropRegion_Copy(t *testing.T) {
	src := createInMemoryImage(50, 50, color.RGBA{10, 20, 30, 255})
	src.Set(25, 25, color.RGBA{255, 255, 255, 255})

	cropped, offset, err := CropRegion(plain{src}, Region{X1: 20, Y1: 20, X2: 30, Y2: 30})
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if offset != (image.Point{X: 20, Y: 20}) {
		t.Errorf("offset: got %v, want (20,20)", offset)
	}
	if cropped.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Errorf("copy should be rebased at the origin, got %v", cropped.Bounds())
	}
	if r, _, _, _ := cropped.At(5, 5).RGBA(); r>>8 != 255 {
		t.Error("pixel at offset not carried into the copy")
	}
}

func TestCropRegion_Invalid(t *testing.T) {
	img := createInMemoryImage(50, 50, color.Black)

	tests := []struct {
		name   string
		region Region
	}{
		{"inverted x", Region{X1: 30, Y1: 0, X2: 10, Y2: 10}},
		{"empty", Region{X1: 10, Y1: 10, X2: 10, Y2: 20}},
		{"outside", Region{X1: 40, Y1: 40, X2: 60, Y2: 60}},
		{"negative", Region{X1: -5, Y1: 0, X2: 10, Y2: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := CropRegion(img, tt.region); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	img := createInMemoryImage(200, 100, color.RGBA{255, 0, 0, 255})

	full, err := EncodePNG(img, 0)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if full.Width != 200 || full.Height != 100 || full.MimeType != "image/png" {
		t.Errorf("unexpected result: %dx%d %s", full.Width, full.Height, full.MimeType)
	}
	if decodePreview(t, full).Bounds().Dx() != 200 {
		t.Error("decoded width mismatch")
	}

	small, err := EncodePNG(img, 50)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if small.Width != 50 || small.Height != 25 {
		t.Errorf("resized: got %dx%d, want 50x25", small.Width, small.Height)
	}

	// narrower than the limit is left alone
	same, err := EncodePNG(img, 500)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if same.Width != 200 {
		t.Errorf("width: got %d, want 200", same.Width)
	}
}
