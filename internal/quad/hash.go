// Package quad derives scale-invariant signatures from star positions.
//
// Each star is grouped with its three nearest neighbors. The six pairwise
// distances of that group, divided by the largest, form a descriptor that
// does not change when the field is scaled, rotated or translated, so it can
// be matched against descriptors from another exposure of the same field.
package quad

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrTooFewStars is returned when fewer than four distinct points are
// available to form a quad.
var ErrTooFewStars = errors.New("at least 4 distinct stars are required")

// Descriptor is the quad signature anchored at one star.
type Descriptor struct {
	Anchor image.Point

	// Neighbors are the three nearest other stars ordered by distance, then
	// Y, then X.
	Neighbors [3]Neighbor

	// Features holds the anchor-to-neighbor distances followed by the
	// neighbor pair distances (1-2, 1-3, 2-3), divided by the largest.
	Features [6]float64
}

// MarshalJSON writes the anchor as an {x, y} object.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	return json.Marshal(struct {
		Anchor    point       `json:"anchor"`
		Neighbors [3]Neighbor `json:"neighbors"`
		Features  [6]float64  `json:"features"`
	}{point{d.Anchor.X, d.Anchor.Y}, d.Neighbors, d.Features})
}

// Hash computes one descriptor per distinct point. Duplicate points are
// collapsed and descriptors are returned ordered by anchor Y, then X.
func Hash(points []image.Point) ([]Descriptor, error) {
	pts := distinct(points)
	if len(pts) < 4 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewStars, len(pts))
	}

	ix := NewIndex(pts)
	out := make([]Descriptor, 0, len(pts))
	for _, p := range pts {
		out = append(out, describe(ix, p))
	}
	return out, nil
}

func describe(ix *Index, p image.Point) Descriptor {
	d := Descriptor{Anchor: p}

	i := 0
	for _, n := range ix.Nearest(p, 4) {
		if n.Point == p || i == 3 {
			continue
		}
		d.Neighbors[i] = n
		i++
	}

	n := d.Neighbors
	d.Features = [6]float64{
		n[0].Distance,
		n[1].Distance,
		n[2].Distance,
		dist(n[0].Point, n[1].Point),
		dist(n[0].Point, n[2].Point),
		dist(n[1].Point, n[2].Point),
	}

	var largest float64
	for _, f := range d.Features {
		largest = max(largest, f)
	}
	if largest > 0 {
		for k := range d.Features {
			d.Features[k] /= largest
		}
	}
	return d
}

// distinct returns the unique points sorted by Y, then X.
func distinct(points []image.Point) []image.Point {
	seen := make(map[image.Point]struct{}, len(points))
	out := make([]image.Point, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func dist(a, b image.Point) float64 {
	return r2.Norm(r2.Sub(r2.Vec{X: float64(a.X), Y: float64(a.Y)}, r2.Vec{X: float64(b.X), Y: float64(b.Y)}))
}
