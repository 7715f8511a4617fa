package raster

import (
	"fmt"
	"image"
)

// ScaleCutoff rescales an 8-bit cutoff to the native range of depth d:
// unchanged for Uint8, x257 (65535/255) for Uint16, /255 for Float32.
func ScaleCutoff(cutoff uint8, d Depth) (float64, error) {
	switch d {
	case Uint8:
		return float64(cutoff), nil
	case Uint16:
		return float64(cutoff) * (65535 / 255), nil
	case Float32:
		return float64(cutoff) / 255, nil
	default:
		return 0, fmt.Errorf("%w: depth %s", ErrUnsupportedFormat, d)
	}
}

// Threshold binarizes b in place. Samples strictly above the rescaled cutoff
// become the native maximum, all others become zero. Every channel is
// rewritten, alpha included.
//
// Buffers without a supported format are rejected with ErrUnsupportedFormat
// and left untouched.
func Threshold(b *Buffer, cutoff uint8) error {
	if b == nil || b.store == nil || !b.Format.Valid() {
		return ErrUnsupportedFormat
	}
	level, err := ScaleCutoff(cutoff, b.Format.Depth)
	if err != nil {
		return err
	}

	on := b.Max()
	for i, n := 0, b.Len(); i < n; i++ {
		if b.At(i) > level {
			b.Set(i, on)
		} else {
			b.Set(i, 0)
		}
	}
	return nil
}

// SplitChannels returns red, green and blue as 8-bit single-channel images.
//
// Channel mapping per layout:
//   - luma (1) and luma+alpha (2): the luma plane is copied to all three
//   - RGB (3) and RGBA (4): one plane per color, alpha dropped
//
// Samples are reduced to 8 bits: 16-bit values are shifted right by 8, float
// values are multiplied by 255 and clamped.
func SplitChannels(b *Buffer) (r, g, bl *image.Gray, err error) {
	if b == nil || b.store == nil || !b.Format.Valid() {
		return nil, nil, nil, ErrUnsupportedFormat
	}

	rect := b.Bounds()
	r, g, bl = image.NewGray(rect), image.NewGray(rect), image.NewGray(rect)
	planes := [3]*image.Gray{r, g, bl}

	src := [3]int{0, 1, 2}
	if b.Format.Channels < 3 {
		src = [3]int{0, 0, 0}
	}

	ch := b.Format.Channels
	for y := 0; y < b.Height; y++ {
		row := y * b.Width
		for x := 0; x < b.Width; x++ {
			base := (row + x) * ch
			for p, plane := range planes {
				plane.Pix[row+x] = b.to8(b.At(base + src[p]))
			}
		}
	}
	return r, g, bl, nil
}

func (b *Buffer) to8(v float64) uint8 {
	switch b.Format.Depth {
	case Uint16:
		return uint8(uint16(v) >> 8)
	case Float32:
		v *= 255
		if v <= 0 {
			return 0
		}
		if v >= 255 {
			return 255
		}
		return uint8(v)
	default:
		return uint8(v)
	}
}

// Opaque sets every alpha sample to the native maximum. Layouts without an
// alpha channel (1 and 3 channels) are left unchanged.
func (b *Buffer) Opaque() error {
	if b == nil || b.store == nil || !b.Format.Valid() {
		return ErrUnsupportedFormat
	}
	ch := b.Format.Channels
	if ch != 2 && ch != 4 {
		return nil
	}
	full := b.Max()
	for i := ch - 1; i < b.Len(); i += ch {
		b.Set(i, full)
	}
	return nil
}
