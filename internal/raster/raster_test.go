package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// createGradient creates an 8-bit gray image whose value equals x.
func createGradient(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x)})
		}
	}
	return img
}

func TestFromImage_Formats(t *testing.T) {
	rect := image.Rect(0, 0, 4, 3)
	tests := []struct {
		name     string
		img      image.Image
		depth    Depth
		channels int
	}{
		{"gray", image.NewGray(rect), Uint8, 1},
		{"gray16", image.NewGray16(rect), Uint16, 1},
		{"rgba", image.NewRGBA(rect), Uint8, 4},
		{"nrgba", image.NewNRGBA(rect), Uint8, 4},
		{"rgba64", image.NewRGBA64(rect), Uint16, 4},
		{"nrgba64", image.NewNRGBA64(rect), Uint16, 4},
		{"ycbcr", image.NewYCbCr(rect, image.YCbCrSubsampleRatio444), Uint8, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := FromImage(tt.img)
			if err != nil {
				t.Fatalf("FromImage failed: %v", err)
			}
			if b.Width != 4 || b.Height != 3 {
				t.Errorf("size: got %dx%d, want 4x3", b.Width, b.Height)
			}
			if b.Format.Depth != tt.depth || b.Format.Channels != tt.channels {
				t.Errorf("format: got %s, want %s x%d", b.Format, tt.depth, tt.channels)
			}
			if b.Len() != 12*tt.channels {
				t.Errorf("Len: got %d, want %d", b.Len(), 12*tt.channels)
			}
			if f := FormatOf(tt.img); f != b.Format {
				t.Errorf("FormatOf: got %s, want %s", f, b.Format)
			}
		})
	}
}

func TestFromImage_SubImageOffset(t *testing.T) {
	img := createGradient(10, 10)
	sub := img.SubImage(image.Rect(5, 2, 8, 4)).(*image.Gray)

	b, err := FromImage(sub)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if got := b.At(b.Index(0, 0, 0)); got != 5 {
		t.Errorf("first sample: got %v, want 5", got)
	}
	if got := b.At(b.Index(2, 1, 0)); got != 7 {
		t.Errorf("last sample: got %v, want 7", got)
	}
}

func TestScaleCutoff(t *testing.T) {
	tests := []struct {
		depth Depth
		want  float64
	}{
		{Uint8, 100},
		{Uint16, 100 * 257},
		{Float32, 100.0 / 255},
	}
	for _, tt := range tests {
		t.Run(tt.depth.String(), func(t *testing.T) {
			got, err := ScaleCutoff(100, tt.depth)
			if err != nil {
				t.Fatalf("ScaleCutoff failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ScaleCutoff(100, Invalid); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("invalid depth: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestThreshold_Uint8(t *testing.T) {
	b, err := FromImage(createGradient(256, 1))
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	if err := Threshold(b, 100); err != nil {
		t.Fatalf("Threshold failed: %v", err)
	}

	for x := 0; x < 256; x++ {
		want := 0.0
		if x > 100 {
			want = 255
		}
		if got := b.At(x); got != want {
			t.Fatalf("x=%d: got %v, want %v", x, got, want)
		}
	}
}

func TestOpaque_AfterThreshold(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	b, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	// nothing is above 255, alpha included
	if err := Threshold(b, 255); err != nil {
		t.Fatalf("Threshold failed: %v", err)
	}
	if b.At(b.Index(0, 0, 3)) != 0 {
		t.Fatal("threshold should clear alpha")
	}

	if err := b.Opaque(); err != nil {
		t.Fatalf("Opaque failed: %v", err)
	}
	for x := 0; x < 2; x++ {
		if got := b.At(b.Index(x, 0, 3)); got != 255 {
			t.Errorf("alpha at x=%d: got %v, want 255", x, got)
		}
		if got := b.At(b.Index(x, 0, 0)); got != 0 {
			t.Errorf("color at x=%d should stay binarized, got %v", x, got)
		}
	}
}

func TestOpaque_NoAlpha(t *testing.T) {
	b, err := NewFloat(2, 2, 3)
	if err != nil {
		t.Fatalf("NewFloat failed: %v", err)
	}
	if err := b.Opaque(); err != nil {
		t.Fatalf("Opaque failed: %v", err)
	}
	for i := 0; i < b.Len(); i++ {
		if b.At(i) != 0 {
			t.Fatalf("sample %d changed without an alpha channel", i)
		}
	}

	var zero Buffer
	if err := zero.Opaque(); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestThreshold_Uint16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 3, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 100 * 257})
	img.SetGray16(1, 0, color.Gray16{Y: 100*257 + 1})
	img.SetGray16(2, 0, color.Gray16{Y: 65535})

	b, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if err := Threshold(b, 100); err != nil {
		t.Fatalf("Threshold failed: %v", err)
	}

	want := []float64{0, 65535, 65535}
	for i, w := range want {
		if got := b.At(i); got != w {
			t.Errorf("sample %d: got %v, want %v", i, got, w)
		}
	}
}

func TestThreshold_Float(t *testing.T) {
	b, err := NewFloat(3, 1, 1)
	if err != nil {
		t.Fatalf("NewFloat failed: %v", err)
	}
	b.Set(0, 0.2)
	b.Set(1, 0.5)
	b.Set(2, 0.9)

	if err := Threshold(b, 127); err != nil { // 127/255 ~ 0.498
		t.Fatalf("Threshold failed: %v", err)
	}

	want := []float64{0, 1, 1}
	for i, w := range want {
		if got := b.At(i); got != w {
			t.Errorf("sample %d: got %v, want %v", i, got, w)
		}
	}
}

func TestThreshold_Idempotent(t *testing.T) {
	for _, cutoff := range []uint8{0, 1, 64, 128, 254, 255} {
		b, err := FromImage(createGradient(256, 4))
		if err != nil {
			t.Fatalf("FromImage failed: %v", err)
		}
		if err := Threshold(b, cutoff); err != nil {
			t.Fatalf("Threshold failed: %v", err)
		}
		once := b.Clone()
		if err := Threshold(b, cutoff); err != nil {
			t.Fatalf("second Threshold failed: %v", err)
		}
		for i := 0; i < b.Len(); i++ {
			if b.At(i) != once.At(i) {
				t.Fatalf("cutoff %d: sample %d changed from %v to %v", cutoff, i, once.At(i), b.At(i))
			}
		}
	}
}

func TestThreshold_Unsupported(t *testing.T) {
	var b Buffer
	if err := Threshold(&b, 10); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("zero buffer: got %v, want ErrUnsupportedFormat", err)
	}
	if err := Threshold(nil, 10); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("nil buffer: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestClone_Independent(t *testing.T) {
	b, err := FromImage(createGradient(8, 8))
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	c := b.Clone()
	if err := Threshold(c, 3); err != nil {
		t.Fatalf("Threshold failed: %v", err)
	}
	if got := b.At(b.Index(5, 0, 0)); got != 5 {
		t.Errorf("original mutated: got %v, want 5", got)
	}
	if got := c.At(c.Index(5, 0, 0)); got != 255 {
		t.Errorf("clone not thresholded: got %v, want 255", got)
	}
}

func TestSplitChannels_RGB(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	b, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	r, g, bl, err := SplitChannels(b)
	if err != nil {
		t.Fatalf("SplitChannels failed: %v", err)
	}

	if r.GrayAt(1, 1).Y != 10 || g.GrayAt(1, 1).Y != 20 || bl.GrayAt(1, 1).Y != 30 {
		t.Errorf("got (%d,%d,%d), want (10,20,30)", r.GrayAt(1, 1).Y, g.GrayAt(1, 1).Y, bl.GrayAt(1, 1).Y)
	}
	if r.GrayAt(0, 0).Y != 0 {
		t.Errorf("background: got %d, want 0", r.GrayAt(0, 0).Y)
	}
}

func TestSplitChannels_LumaReplicated(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 1, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 0xAB12})

	b, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	r, g, bl, err := SplitChannels(b)
	if err != nil {
		t.Fatalf("SplitChannels failed: %v", err)
	}
	for i, plane := range []*image.Gray{r, g, bl} {
		if plane.Pix[0] != 0xAB {
			t.Errorf("plane %d: got %#x, want 0xab", i, plane.Pix[0])
		}
	}
}

func TestSplitChannels_Float(t *testing.T) {
	b, err := NewFloat(1, 1, 3)
	if err != nil {
		t.Fatalf("NewFloat failed: %v", err)
	}
	b.Set(0, 1)
	b.Set(1, 0.5)
	b.Set(2, 1.5)

	r, g, bl, err := SplitChannels(b)
	if err != nil {
		t.Fatalf("SplitChannels failed: %v", err)
	}
	if r.Pix[0] != 255 || g.Pix[0] != 127 || bl.Pix[0] != 255 {
		t.Errorf("got (%d,%d,%d), want (255,127,255)", r.Pix[0], g.Pix[0], bl.Pix[0])
	}
}

func TestToImage_RoundTrip(t *testing.T) {
	src := createGradient(16, 2)
	b, err := FromImage(src)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	out, err := b.ToImage()
	if err != nil {
		t.Fatalf("ToImage failed: %v", err)
	}
	gray, ok := out.(*image.Gray)
	if !ok {
		t.Fatalf("ToImage type: got %T, want *image.Gray", out)
	}
	if gray.GrayAt(9, 1).Y != 9 {
		t.Errorf("pixel (9,1): got %d, want 9", gray.GrayAt(9, 1).Y)
	}
}

func TestToImage_Float(t *testing.T) {
	b, err := NewFloat(1, 1, 3)
	if err != nil {
		t.Fatalf("NewFloat failed: %v", err)
	}
	b.Set(0, 1)
	out, err := b.ToImage()
	if err != nil {
		t.Fatalf("ToImage failed: %v", err)
	}
	c := out.(*image.NRGBA64).NRGBA64At(0, 0)
	if c.R != 65535 || c.G != 0 || c.A != 65535 {
		t.Errorf("got %+v, want R=65535 G=0 A=65535", c)
	}
}
