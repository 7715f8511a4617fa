package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/anshap1719/stardetect/internal/detection"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor represents a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// StarColor summarizes the light inside one detected star.
type StarColor struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Radius int `json:"radius"`

	// Pixels is the number of samples averaged.
	Pixels int `json:"pixels"`

	// Mean is the average color of the disk.
	Mean RGBColor `json:"mean"`
	Hex  string   `json:"hex"`
	HSL  HSLColor `json:"hsl"`

	// Peak is the brightest luminance in the disk, 0-1.
	Peak float64 `json:"peak"`

	// BlueRed is log2(mean blue / mean red). Hot stars are positive, cool
	// stars negative. Zero when either channel is empty.
	BlueRed float64 `json:"blue_red"`
}

// StarColors samples the disk of every star in img.
//
// Each disk covers the pixels within Radius of the star center, clipped to
// the image. Colors are averaged in linear RGB so that bright cores are not
// underweighted.
func StarColors(img image.Image, stars []detection.StarCenter) ([]StarColor, error) {
	bounds := img.Bounds()
	out := make([]StarColor, 0, len(stars))

	for _, s := range stars {
		p := s.Coord.Add(bounds.Min)
		if !p.In(bounds) {
			return nil, fmt.Errorf("star (%d,%d) outside image bounds", s.Coord.X, s.Coord.Y)
		}

		var sum colorful.Color
		var peak float64
		n := 0
		r := max(s.Radius, 0)
		for y := p.Y - r; y <= p.Y+r; y++ {
			for x := p.X - r; x <= p.X+r; x++ {
				dx, dy := x-p.X, y-p.Y
				if dx*dx+dy*dy > r*r || !(image.Point{x, y}).In(bounds) {
					continue
				}
				c, _ := colorful.MakeColor(img.At(x, y))
				lr, lg, lb := c.LinearRgb()
				sum.R += lr
				sum.G += lg
				sum.B += lb
				_, l, _ := c.Xyz()
				peak = math.Max(peak, l)
				n++
			}
		}

		mean := colorful.LinearRgb(sum.R/float64(n), sum.G/float64(n), sum.B/float64(n)).Clamped()
		r8, g8, b8 := mean.RGB255()
		h, sat, l := mean.Hsl()

		var blueRed float64
		if sum.R > 0 && sum.B > 0 {
			blueRed = math.Log2(sum.B / sum.R)
		}

		out = append(out, StarColor{
			X:       s.Coord.X,
			Y:       s.Coord.Y,
			Radius:  s.Radius,
			Pixels:  n,
			Mean:    RGBColor{R: r8, G: g8, B: b8},
			Hex:     mean.Hex(),
			HSL:     HSLColor{H: int(math.Round(h)) % 360, S: int(math.Round(sat * 100)), L: int(math.Round(l * 100))},
			Peak:    peak,
			BlueRed: blueRed,
		})
	}
	return out, nil
}
