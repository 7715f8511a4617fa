package detection

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"
)

// ErrGeometryMismatch is returned when channel masks differ in size.
var ErrGeometryMismatch = errors.New("channel masks differ in geometry")

// Consensus extracts stars from the red, green and blue masks of one frame
// and keeps only coordinates found on all three.
//
// Genuine stars clear a shared cutoff on every channel, while hot pixels,
// fringing and similar artifacts usually show up on one or two. When the
// channels disagree on radius the red channel's value is reported. The
// result is sorted by row, then column.
func Consensus(red, green, blue *image.Gray, band SizeBand, workers int) ([]StarCenter, error) {
	if red.Bounds() != green.Bounds() || red.Bounds() != blue.Bounds() {
		return nil, fmt.Errorf("%w: %v, %v, %v", ErrGeometryMismatch, red.Bounds(), green.Bounds(), blue.Bounds())
	}

	masks := [3]*image.Gray{red, green, blue}
	var sets [3]StarSet

	var g errgroup.Group
	for i, m := range masks {
		i, m := i, m
		g.Go(func() error {
			sets[i] = NewStarSet(Extract(m, band, workers))
			return nil
		})
	}
	_ = g.Wait()

	return sets[0].Intersect(sets[1], sets[2]).Sorted(), nil
}
