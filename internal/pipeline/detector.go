package pipeline

import (
	"fmt"
	"image"
	"math"

	"github.com/anshap1719/stardetect/internal/detection"
	"github.com/anshap1719/stardetect/internal/multiscale"
	"github.com/anshap1719/stardetect/internal/quad"
	"github.com/anshap1719/stardetect/internal/raster"
)

// Result is the outcome of one detection run.
type Result struct {
	// Stars are the consensus detections ordered by Y, then X.
	Stars []detection.StarCenter `json:"stars"`

	// Cutoff is the 8-bit threshold the stars were extracted at.
	Cutoff uint8 `json:"cutoff"`

	// Iterations counts threshold search steps. Zero when the cutoff was
	// given explicitly.
	Iterations int `json:"iterations"`

	// Levels is the number of decomposition levels used by the filter.
	Levels int `json:"levels"`

	Width  int `json:"width"`
	Height int `json:"height"`

	// Quads is set when quad hashing is enabled and succeeded.
	Quads []quad.Descriptor `json:"quads,omitempty"`

	// QuadError reports why hashing failed. Stars are still valid.
	QuadError error `json:"-"`
}

// Detector runs the star detection pipeline with a fixed configuration.
// It holds no per-call state and is safe for concurrent use.
type Detector struct {
	cfg    Config
	kernel multiscale.Kernel
	count  detection.CountFunc
}

// New validates cfg and returns a Detector.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kernel, err := multiscale.KernelByName(cfg.Kernel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	count := detection.ConsensusCounter(cfg.Band(), cfg.Workers)
	if cfg.CountStrategy == StrategyLuminance {
		count = detection.LuminanceCounter(cfg.Band(), cfg.Workers)
	}
	return &Detector{cfg: cfg, kernel: kernel, count: count}, nil
}

// Config returns the detector's configuration.
func (d *Detector) Config() Config { return d.cfg }

// Levels returns the decomposition depth for an image: the natural log of
// the shorter side, truncated, capped at limit and at least 1.
func Levels(width, height, limit int) int {
	side := min(width, height)
	if side < 1 {
		return 1
	}
	n := int(math.Log(float64(side)))
	return max(1, min(n, limit))
}

// Filter isolates small-scale structure in buf. It decomposes the image,
// recomposes the detail layers whose scale is below half the level count
// and rescales each channel to [0, 1]. The result is a new 3-channel float
// buffer; buf is not modified.
func (d *Detector) Filter(buf *raster.Buffer) (*raster.Buffer, int, error) {
	if buf == nil || !buf.Format.Valid() || buf.Len() == 0 {
		return nil, 0, raster.ErrUnsupportedFormat
	}

	levels := Levels(buf.Width, buf.Height, d.cfg.MaxDecompositionLevels)
	layers, err := multiscale.Decompose(buf, levels, d.kernel)
	if err != nil {
		return nil, 0, fmt.Errorf("decompose: %w", err)
	}

	filtered, err := multiscale.Recompose(layers, multiscale.SmallScales(max(1, levels/2)), buf.Width, buf.Height)
	if err != nil {
		return nil, 0, fmt.Errorf("recompose: %w", err)
	}
	if err := multiscale.RescaleChannels(filtered); err != nil {
		return nil, 0, err
	}
	return filtered, levels, nil
}

// Detect converts img and runs DetectBuffer.
func (d *Detector) Detect(img image.Image) (*Result, error) {
	buf, err := raster.FromImage(img)
	if err != nil {
		return nil, err
	}
	return d.DetectBuffer(buf)
}

// DetectBuffer filters buf, searches for the highest cutoff that yields at
// least MinStarCount detections and returns the consensus stars at that
// cutoff.
//
// A failed quad hash is reported in Result.QuadError and does not fail the
// call.
func (d *Detector) DetectBuffer(buf *raster.Buffer) (*Result, error) {
	filtered, levels, err := d.Filter(buf)
	if err != nil {
		return nil, err
	}

	opt := detection.Optimizer{Target: d.cfg.MinStarCount, Count: d.count}
	search, err := opt.Optimize(filtered)
	if err != nil {
		return nil, err
	}

	res, err := d.extract(filtered, search.Cutoff)
	if err != nil {
		return nil, err
	}
	res.Iterations = search.Iterations
	res.Levels = levels
	return res, nil
}

// Extract filters img and returns the consensus stars at a fixed cutoff,
// skipping the threshold search.
func (d *Detector) Extract(img image.Image, cutoff uint8) (*Result, error) {
	buf, err := raster.FromImage(img)
	if err != nil {
		return nil, err
	}
	filtered, levels, err := d.Filter(buf)
	if err != nil {
		return nil, err
	}
	res, err := d.extract(filtered, cutoff)
	if err != nil {
		return nil, err
	}
	res.Levels = levels
	return res, nil
}

func (d *Detector) extract(filtered *raster.Buffer, cutoff uint8) (*Result, error) {
	r, g, b, err := detection.Binarize(filtered, cutoff)
	if err != nil {
		return nil, err
	}
	stars, err := detection.Consensus(r, g, b, d.cfg.Band(), d.cfg.Workers)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Stars:  stars,
		Cutoff: cutoff,
		Width:  filtered.Width,
		Height: filtered.Height,
	}
	if d.cfg.ComputeQuads {
		res.Quads, res.QuadError = d.Hash(stars)
	}
	return res, nil
}

// Hash computes quad descriptors for stars.
func (d *Detector) Hash(stars []detection.StarCenter) ([]quad.Descriptor, error) {
	return quad.Hash(detection.Points(stars))
}
