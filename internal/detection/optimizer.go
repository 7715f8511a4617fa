package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"

	"github.com/anshap1719/stardetect/internal/raster"
)

var (
	// ErrNoConvergence is returned when the cutoff reaches zero without the
	// detection count reaching the target. Retrying with a smaller target is
	// the usual recovery.
	ErrNoConvergence = errors.New("threshold search did not reach target star count")

	// ErrInvalidTarget is returned for a non-positive target count.
	ErrInvalidTarget = errors.New("target star count must be positive")
)

// backoff is the factor applied to the cutoff on every iteration.
const backoff = 0.95

// CountFunc counts detections in a binarized buffer.
type CountFunc func(mask *raster.Buffer) (int, error)

// ConsensusCounter counts stars present on all three color channels.
func ConsensusCounter(band SizeBand, workers int) CountFunc {
	return func(mask *raster.Buffer) (int, error) {
		r, g, b, err := raster.SplitChannels(mask)
		if err != nil {
			return 0, err
		}
		stars, err := Consensus(r, g, b, band, workers)
		if err != nil {
			return 0, err
		}
		return len(stars), nil
	}
}

// LuminanceCounter counts stars in the weighted grayscale of the mask, a
// single extraction instead of three. A pixel is foreground when any of its
// color channels is.
func LuminanceCounter(band SizeBand, workers int) CountFunc {
	return func(mask *raster.Buffer) (int, error) {
		img, err := mask.ToImage()
		if err != nil {
			return 0, err
		}
		return len(Extract(luminanceMask(img), band, workers)), nil
	}
}

// luminanceMask reduces img to a single 8-bit plane. bild returns the
// grayscale as RGBA with equal color samples, so the red byte is the luma.
func luminanceMask(img image.Image) *image.Gray {
	rgba := effect.Grayscale(img)
	gray := image.NewGray(rgba.Bounds())
	for i := range gray.Pix {
		gray.Pix[i] = rgba.Pix[i*4]
	}
	return gray
}

// Search describes the outcome of a threshold search.
type Search struct {
	Cutoff     uint8 `json:"cutoff"`
	Count      int   `json:"count"`
	Iterations int   `json:"iterations"`
}

// Optimizer lowers the binarization cutoff until enough stars are detected.
type Optimizer struct {
	// Target is the minimum number of detections to reach.
	Target int

	// Count measures a binarized clone of the image at each step.
	Count CountFunc
}

// Optimize searches for the highest cutoff on the schedule
// 255 -> floor(0.95*T) -> ... -> 0 at which Count reaches Target.
//
// The search only moves downward; it assumes detections increase as the
// cutoff falls. img is never modified. If the target is still unmet after
// evaluating cutoff 0 the search fails with ErrNoConvergence.
func (o Optimizer) Optimize(img *raster.Buffer) (Search, error) {
	if o.Target <= 0 {
		return Search{}, fmt.Errorf("%w: %d", ErrInvalidTarget, o.Target)
	}
	if o.Count == nil {
		return Search{}, errors.New("optimizer has no count function")
	}

	s := Search{Cutoff: 255}
	best := 0
	for s.Count < o.Target {
		if s.Cutoff == 0 {
			return s, fmt.Errorf("%w: best count %d of %d after %d iterations",
				ErrNoConvergence, best, o.Target, s.Iterations)
		}
		s.Cutoff = uint8(backoff * float64(s.Cutoff))
		s.Iterations++

		mask := img.Clone()
		if err := raster.Threshold(mask, s.Cutoff); err != nil {
			return s, err
		}
		n, err := o.Count(mask)
		if err != nil {
			return s, err
		}
		s.Count = n
		best = max(best, n)
	}
	return s, nil
}

// Binarize returns a thresholded clone of img split into channel masks, the
// input expected by Consensus.
func Binarize(img *raster.Buffer, cutoff uint8) (r, g, b *image.Gray, err error) {
	mask := img.Clone()
	if err := raster.Threshold(mask, cutoff); err != nil {
		return nil, nil, nil, err
	}
	return raster.SplitChannels(mask)
}
