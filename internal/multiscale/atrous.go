// Package multiscale implements the à trous ("with holes") wavelet
// decomposition used to separate point-like detail from smooth background.
//
// Decompose splits an image into detail layers w_0..w_{n-1} plus a residual
// c_n such that the source equals the sum of all layers:
//
//	c_0     = source
//	c_{j+1} = c_j convolved with the kernel dilated by 2^j
//	w_j     = c_j - c_{j+1}
//
// Layer j isolates structure at a spatial scale of roughly 2^j pixels. Star
// detection keeps the smallest scales and drops the residual, which removes
// sky gradients and nebulosity.
package multiscale

import (
	"errors"
	"fmt"

	"github.com/anshap1719/stardetect/internal/raster"
)

// Kernel is a symmetric 1D smoothing kernel applied separably.
type Kernel struct {
	Name    string
	Weights []float64
}

var (
	// Linear is the linear interpolation (triangle) kernel.
	Linear = Kernel{Name: "linear", Weights: []float64{1.0 / 4, 1.0 / 2, 1.0 / 4}}

	// B3Spline is the cubic B-spline kernel of the starlet transform.
	B3Spline = Kernel{Name: "b3spline", Weights: []float64{1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16}}
)

// KernelByName resolves a configured kernel name.
func KernelByName(name string) (Kernel, error) {
	switch name {
	case "", Linear.Name:
		return Linear, nil
	case B3Spline.Name:
		return B3Spline, nil
	default:
		return Kernel{}, fmt.Errorf("unknown kernel %q", name)
	}
}

// Plane is one float64 image channel in row-major order.
type Plane []float64

// Layer is one band of the decomposition, holding an RGB triple of planes.
type Layer struct {
	// Scale is the detail level. It is meaningful only when HasScale is set;
	// the residual layer has no scale.
	Scale    int
	HasScale bool
	Planes   [3]Plane
}

// Decompose runs the à trous transform on src for the given number of
// levels and returns levels detail layers followed by the residual.
//
// Gray sources are replicated to all three planes. Alpha is ignored.
func Decompose(src *raster.Buffer, levels int, kernel Kernel) ([]Layer, error) {
	if src == nil || !src.Format.Valid() || src.Len() == 0 {
		return nil, raster.ErrUnsupportedFormat
	}
	if levels < 1 {
		return nil, fmt.Errorf("decomposition levels must be >= 1, got %d", levels)
	}
	if len(kernel.Weights)%2 == 0 {
		return nil, errors.New("kernel must have odd length")
	}

	w, h := src.Width, src.Height
	current := toPlanes(src)
	layers := make([]Layer, 0, levels+1)

	for j := 0; j < levels; j++ {
		step := 1 << j
		var next [3]Plane
		detail := Layer{Scale: j, HasScale: true}
		for c := 0; c < 3; c++ {
			next[c] = convolveSeparable(current[c], w, h, kernel.Weights, step)
			d := make(Plane, len(next[c]))
			for i := range d {
				d[i] = current[c][i] - next[c][i]
			}
			detail.Planes[c] = d
		}
		layers = append(layers, detail)
		current = next
	}

	layers = append(layers, Layer{Planes: current})
	return layers, nil
}

// toPlanes normalizes the buffer to [0, 1] RGB planes.
func toPlanes(src *raster.Buffer) [3]Plane {
	n := src.Width * src.Height
	ch := src.Format.Channels
	full := src.Max()

	var planes [3]Plane
	for c := range planes {
		planes[c] = make(Plane, n)
	}

	for i := 0; i < n; i++ {
		base := i * ch
		if ch < 3 {
			v := src.At(base) / full
			planes[0][i], planes[1][i], planes[2][i] = v, v, v
			continue
		}
		planes[0][i] = src.At(base) / full
		planes[1][i] = src.At(base+1) / full
		planes[2][i] = src.At(base+2) / full
	}
	return planes
}

// convolveSeparable applies the kernel along rows then columns with taps
// spaced step pixels apart. Borders are mirrored.
func convolveSeparable(src Plane, w, h int, weights []float64, step int) Plane {
	half := len(weights) / 2
	tmp := make(Plane, len(src))
	dst := make(Plane, len(src))

	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			var sum float64
			for k, wt := range weights {
				xx := mirror(x+(k-half)*step, w)
				sum += src[row+xx] * wt
			}
			tmp[row+x] = sum
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k, wt := range weights {
				yy := mirror(y+(k-half)*step, h)
				sum += tmp[yy*w+x] * wt
			}
			dst[y*w+x] = sum
		}
	}
	return dst
}

// mirror reflects idx into [0, size) without repeating the edge sample.
func mirror(idx, size int) int {
	if size == 1 {
		return 0
	}
	period := 2 * (size - 1)
	idx %= period
	if idx < 0 {
		idx += period
	}
	if idx >= size {
		idx = period - idx
	}
	return idx
}
