package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/anshap1719/stardetect/internal/detection"
)

// AnnotateOptions controls how detections are drawn.
type AnnotateOptions struct {
	// Color is a "#RRGGBB" marker color. Empty assigns each star its own hue.
	Color string

	// Padding is the gap in pixels between a star's radius and its marker.
	Padding int

	// Labels draws each star's index next to its marker.
	Labels bool

	// MaxWidth downscales the returned preview when positive. The file
	// written to OutputPath is always full size.
	MaxWidth int

	// OutputPath, when set, also writes the annotated image there as PNG.
	OutputPath string
}

// AnnotateResult contains the annotated preview.
type AnnotateResult struct {
	ImageResult
	Stars      int    `json:"stars"`
	OutputPath string `json:"output_path,omitempty"`
}

// Annotate draws a circle around every star on a copy of img.
//
// Star coordinates are in img's pixel grid with the origin at the top-left
// of its bounds. Markers that extend past the edge are clipped.
func Annotate(img image.Image, stars []detection.StarCenter, opts AnnotateOptions) (*AnnotateResult, error) {
	var fixedColor color.Color
	if opts.Color != "" {
		c, err := colorful.Hex(opts.Color)
		if err != nil {
			return nil, fmt.Errorf("invalid marker color %q: %w", opts.Color, err)
		}
		fixedColor = c
	}
	if opts.Padding < 0 {
		return nil, fmt.Errorf("padding must be non-negative, got %d", opts.Padding)
	}

	// Clone rebases the copy at (0, 0).
	canvas := imaging.Clone(img)

	for i, s := range stars {
		col := fixedColor
		if col == nil {
			col = markerColor(i)
		}
		drawCircle(canvas, s.Coord, s.Radius+opts.Padding, col)
		if opts.Labels {
			drawLabel(canvas, s.Coord.X+s.Radius+opts.Padding+2, s.Coord.Y+4, strconv.Itoa(i), col)
		}
	}

	if opts.OutputPath != "" {
		if err := imgio.Save(opts.OutputPath, canvas, imgio.PNGEncoder()); err != nil {
			return nil, fmt.Errorf("failed to write annotated image: %w", err)
		}
	}

	preview, err := EncodePNG(canvas, opts.MaxWidth)
	if err != nil {
		return nil, err
	}
	return &AnnotateResult{
		ImageResult: *preview,
		Stars:       len(stars),
		OutputPath:  opts.OutputPath,
	}, nil
}

// markerColor spreads hues by the golden angle so neighbors in the star list
// get distinct colors.
func markerColor(i int) color.Color {
	hue := math.Mod(float64(i)*137.508, 360)
	return colorful.Hcl(hue, 0.6, 0.75).Clamped()
}

// drawCircle draws a one-pixel ring using the midpoint algorithm.
func drawCircle(img draw.Image, c image.Point, r int, col color.Color) {
	if r <= 0 {
		img.Set(c.X, c.Y, col)
		return
	}
	x, y, d := r, 0, 1-r
	for x >= y {
		for _, p := range [8]image.Point{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			img.Set(c.X+p.X, c.Y+p.Y, col)
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func drawLabel(img draw.Image, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
