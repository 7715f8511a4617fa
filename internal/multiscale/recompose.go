package multiscale

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/anshap1719/stardetect/internal/raster"
)

// SmallScales returns a layer filter keeping detail layers whose scale is
// below limit. The residual is always dropped.
func SmallScales(limit int) func(Layer) bool {
	return func(l Layer) bool {
		return l.HasScale && l.Scale < limit
	}
}

// Recompose sums the layers accepted by keep into a 3-channel float buffer of
// the given size. A nil keep accepts every layer, which reproduces the source.
func Recompose(layers []Layer, keep func(Layer) bool, width, height int) (*raster.Buffer, error) {
	n := width * height
	var sum [3]Plane
	for c := range sum {
		sum[c] = make(Plane, n)
	}

	for _, l := range layers {
		if keep != nil && !keep(l) {
			continue
		}
		for c := 0; c < 3; c++ {
			if len(l.Planes[c]) != n {
				return nil, fmt.Errorf("layer plane has %d samples, want %d", len(l.Planes[c]), n)
			}
			floats.Add(sum[c], l.Planes[c])
		}
	}

	out, err := raster.NewFloat(width, height, 3)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			out.Set(i*3+c, sum[c][i])
		}
	}
	return out, nil
}

// RescaleChannels linearly maps each channel of a float buffer onto [0, 1].
// A constant channel becomes all zeros.
func RescaleChannels(b *raster.Buffer) error {
	if b == nil || b.Format.Depth != raster.Float32 {
		return fmt.Errorf("%w: rescale needs a float buffer", raster.ErrUnsupportedFormat)
	}

	ch := b.Format.Channels
	n := b.Width * b.Height
	plane := make([]float64, n)

	for c := 0; c < ch; c++ {
		for i := 0; i < n; i++ {
			plane[i] = b.At(i*ch + c)
		}

		lo, hi := floats.Min(plane), floats.Max(plane)
		span := hi - lo
		if span == 0 {
			floats.Scale(0, plane)
		} else {
			floats.AddConst(-lo, plane)
			floats.Scale(1/span, plane)
		}

		for i := 0; i < n; i++ {
			b.Set(i*ch+c, plane[i])
		}
	}
	return nil
}
