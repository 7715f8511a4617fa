package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned when a buffer has no recognized depth or
// channel layout, including the zero-value Buffer.
var ErrUnsupportedFormat = errors.New("unsupported pixel format")

// Depth identifies the storage type of a single sample.
type Depth int

const (
	// Invalid is the zero Depth; buffers with it have no samples.
	Invalid Depth = iota
	Uint8
	Uint16
	Float32
)

// String returns a short human-readable name ("8-bit", "16-bit", "float32").
func (d Depth) String() string {
	switch d {
	case Uint8:
		return "8-bit"
	case Uint16:
		return "16-bit"
	case Float32:
		return "float32"
	default:
		return "invalid"
	}
}

// Format is the tagged pixel format of a Buffer.
type Format struct {
	Depth    Depth `json:"-"`
	Channels int   `json:"channels"`
}

// Valid reports whether the format can be processed.
func (f Format) Valid() bool {
	return f.Depth != Invalid && f.Channels >= 1 && f.Channels <= 4
}

func (f Format) String() string {
	return fmt.Sprintf("%s x%d", f.Depth, f.Channels)
}

// sampleStore is the canonical accessor over one concrete sample type.
type sampleStore interface {
	Len() int
	At(i int) float64
	Set(i int, v float64)
	Max() float64
	clone() sampleStore
}

type samples[T uint8 | uint16 | float32] struct {
	pix []T
	max T
}

func (s *samples[T]) Len() int             { return len(s.pix) }
func (s *samples[T]) At(i int) float64     { return float64(s.pix[i]) }
func (s *samples[T]) Set(i int, v float64) { s.pix[i] = T(v) }
func (s *samples[T]) Max() float64         { return float64(s.max) }

func (s *samples[T]) clone() sampleStore {
	pix := make([]T, len(s.pix))
	copy(pix, s.pix)
	return &samples[T]{pix: pix, max: s.max}
}

// Buffer is a two-dimensional, interleaved pixel buffer with a tagged format.
//
// Sample (x, y, c) lives at index (y*Width+x)*Channels + c.
type Buffer struct {
	Width  int
	Height int
	Format Format

	store sampleStore
}

// New allocates a zeroed buffer of the given geometry and format.
func New(width, height int, format Format) (*Buffer, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer size %dx%d", width, height)
	}

	n := width * height * format.Channels
	b := &Buffer{Width: width, Height: height, Format: format}
	switch format.Depth {
	case Uint8:
		b.store = &samples[uint8]{pix: make([]uint8, n), max: 255}
	case Uint16:
		b.store = &samples[uint16]{pix: make([]uint16, n), max: 65535}
	case Float32:
		b.store = &samples[float32]{pix: make([]float32, n), max: 1}
	}
	return b, nil
}

// NewFloat allocates a zeroed float32 buffer, the format produced by the
// multiscale filter.
func NewFloat(width, height, channels int) (*Buffer, error) {
	return New(width, height, Format{Depth: Float32, Channels: channels})
}

// Len returns the total number of samples.
func (b *Buffer) Len() int {
	if b.store == nil {
		return 0
	}
	return b.store.Len()
}

// At returns the sample at flat index i in native units.
func (b *Buffer) At(i int) float64 { return b.store.At(i) }

// Set stores v at flat index i. Integer depths truncate.
func (b *Buffer) Set(i int, v float64) { b.store.Set(i, v) }

// Max returns the native full-scale sample value.
func (b *Buffer) Max() float64 {
	if b.store == nil {
		return 0
	}
	return b.store.Max()
}

// Index returns the flat sample index of channel c at (x, y).
func (b *Buffer) Index(x, y, c int) int {
	return (y*b.Width+x)*b.Format.Channels + c
}

// Clone returns a deep copy that shares no memory with b.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{Width: b.Width, Height: b.Height, Format: b.Format}
	if b.store != nil {
		c.store = b.store.clone()
	}
	return c
}

// Bounds returns the buffer rectangle anchored at the origin.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// FormatOf reports the Format FromImage would produce for img without
// copying any pixels.
func FormatOf(img image.Image) Format {
	switch img.(type) {
	case *image.Gray:
		return Format{Depth: Uint8, Channels: 1}
	case *image.Gray16:
		return Format{Depth: Uint16, Channels: 1}
	case *image.RGBA64, *image.NRGBA64:
		return Format{Depth: Uint16, Channels: 4}
	default:
		return Format{Depth: Uint8, Channels: 4}
	}
}

// FromImage copies a decoded image into a Buffer.
//
// Native layouts map directly:
//   - *image.Gray -> 8-bit x1
//   - *image.Gray16 -> 16-bit x1
//   - *image.RGBA, *image.NRGBA -> 8-bit x4
//   - *image.RGBA64, *image.NRGBA64 -> 16-bit x4
//
// Every other concrete type (YCbCr from JPEG, Paletted from GIF, CMYK, ...)
// is converted to NRGBA with imaging.Clone and stored as 8-bit x4.
func FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		b, err := New(w, h, Format{Depth: Uint8, Channels: 1})
		if err != nil {
			return nil, err
		}
		pix := b.store.(*samples[uint8]).pix
		for y := 0; y < h; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(pix[y*w:(y+1)*w], src.Pix[off:off+w])
		}
		return b, nil

	case *image.Gray16:
		b, err := New(w, h, Format{Depth: Uint16, Channels: 1})
		if err != nil {
			return nil, err
		}
		pix := b.store.(*samples[uint16]).pix
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix[y*w+x] = src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y
			}
		}
		return b, nil

	case *image.RGBA64, *image.NRGBA64:
		b, err := New(w, h, Format{Depth: Uint16, Channels: 4})
		if err != nil {
			return nil, err
		}
		pix := b.store.(*samples[uint16]).pix
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBA64Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA64)
				i := (y*w + x) * 4
				pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
			}
		}
		return b, nil

	case *image.NRGBA:
		return fromNRGBA(src)

	default:
		// *image.RGBA lands here too: Clone un-premultiplies it.
		return fromNRGBA(imaging.Clone(img))
	}
}

func fromNRGBA(src *image.NRGBA) (*Buffer, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	b, err := New(w, h, Format{Depth: Uint8, Channels: 4})
	if err != nil {
		return nil, err
	}
	pix := b.store.(*samples[uint8]).pix
	for y := 0; y < h; y++ {
		off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(pix[y*w*4:(y+1)*w*4], src.Pix[off:off+w*4])
	}
	return b, nil
}

// ToImage converts the buffer back to a standard library image for encoding
// or annotation. Float buffers are clamped to [0, 1] and widened to 16 bits.
func (b *Buffer) ToImage() (image.Image, error) {
	if !b.Format.Valid() || b.store == nil {
		return nil, ErrUnsupportedFormat
	}

	rect := b.Bounds()
	ch := b.Format.Channels
	full := b.Max()

	switch {
	case b.Format.Depth == Uint8 && ch == 1:
		img := image.NewGray(rect)
		copy(img.Pix, b.store.(*samples[uint8]).pix)
		return img, nil
	case b.Format.Depth == Uint16 && ch == 1:
		img := image.NewGray16(rect)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: uint16(b.At(b.Index(x, y, 0)))})
			}
		}
		return img, nil
	case b.Format.Depth == Uint8:
		img := image.NewNRGBA(rect)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				r, g, bl, a := b.rgba(x, y)
				img.SetNRGBA(x, y, color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(bl), A: uint8(a)})
			}
		}
		return img, nil
	default:
		img := image.NewNRGBA64(rect)
		scale := 65535 / full
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				r, g, bl, a := b.rgba(x, y)
				img.SetNRGBA64(x, y, color.NRGBA64{
					R: to16(r * scale),
					G: to16(g * scale),
					B: to16(bl * scale),
					A: to16(a * scale),
				})
			}
		}
		return img, nil
	}
}

// rgba expands any channel layout to native-unit red, green, blue, alpha.
func (b *Buffer) rgba(x, y int) (r, g, bl, a float64) {
	i := b.Index(x, y, 0)
	full := b.Max()
	switch b.Format.Channels {
	case 1:
		v := b.At(i)
		return v, v, v, full
	case 2:
		v := b.At(i)
		return v, v, v, b.At(i + 1)
	case 3:
		return b.At(i), b.At(i + 1), b.At(i + 2), full
	default:
		return b.At(i), b.At(i + 1), b.At(i + 2), b.At(i + 3)
	}
}

func to16(v float64) uint16 {
	switch {
	case v <= 0:
		return 0
	case v >= 65535:
		return 65535
	default:
		return uint16(v + 0.5)
	}
}
