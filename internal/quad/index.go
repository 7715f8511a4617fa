package quad

import (
	"encoding/json"
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// Neighbor is a point returned by a nearest-neighbor query together with
// its Euclidean distance from the query point.
type Neighbor struct {
	Point    image.Point
	Distance float64
}

// MarshalJSON flattens the point into x and y fields.
func (n Neighbor) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X        int     `json:"x"`
		Y        int     `json:"y"`
		Distance float64 `json:"distance"`
	}{n.Point.X, n.Point.Y, n.Distance})
}

// Index answers nearest-neighbor queries over a fixed set of star
// coordinates.
type Index struct {
	tree *kdtree.Tree
	n    int
}

// NewIndex builds an index over points. The slice is not retained.
func NewIndex(points []image.Point) *Index {
	pts := make(kdtree.Points, len(points))
	for i, p := range points {
		pts[i] = kdtree.Point{float64(p.X), float64(p.Y)}
	}
	if len(pts) == 0 {
		return &Index{}
	}
	return &Index{tree: kdtree.New(pts, false), n: len(pts)}
}

// Len returns the number of indexed points.
func (ix *Index) Len() int { return ix.n }

// Nearest returns up to k indexed points closest to p, p itself included if
// indexed. Results are ordered by distance, then Y, then X, and ties at the
// k-th distance are resolved the same way.
func (ix *Index) Nearest(p image.Point, k int) []Neighbor {
	if ix.tree == nil || k <= 0 {
		return nil
	}
	q := kdtree.Point{float64(p.X), float64(p.Y)}

	// The k-nearest keeper drops arbitrary members of a tie, so use it only
	// to find the k-th distance and collect everything within it.
	nk := kdtree.NewNKeeper(k)
	ix.tree.NearestSet(nk, q)
	var limit float64
	for _, c := range nk.Heap {
		if c.Comparable != nil && c.Dist > limit {
			limit = c.Dist
		}
	}

	dk := kdtree.NewDistKeeper(limit)
	ix.tree.NearestSet(dk, q)

	out := make([]Neighbor, 0, len(dk.Heap))
	for _, c := range dk.Heap {
		if c.Comparable == nil {
			continue
		}
		kp := c.Comparable.(kdtree.Point)
		out = append(out, Neighbor{
			Point:    image.Point{X: int(kp[0]), Y: int(kp[1])},
			Distance: math.Sqrt(c.Dist),
		})
	}
	sortNeighbors(out)
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func sortNeighbors(ns []Neighbor) {
	sort.Slice(ns, func(i, j int) bool {
		a, b := ns[i], ns[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Point.Y != b.Point.Y {
			return a.Point.Y < b.Point.Y
		}
		return a.Point.X < b.Point.X
	})
}
