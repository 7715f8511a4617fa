package detection

import (
	"fmt"
	"image"
	"sort"
)

// StarCenter is one detected star: an integer pixel coordinate and the radius
// of its bright region.
//
// Two detections at the same coordinate are the same star. Use Key for set
// operations; the struct itself compares all fields.
type StarCenter struct {
	Coord  image.Point
	Radius int
}

// Key projects a StarCenter onto its identity, the coordinate.
func (s StarCenter) Key() image.Point { return s.Coord }

// MarshalJSON flattens the coordinate into x and y fields.
func (s StarCenter) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"x":%d,"y":%d,"radius":%d}`, s.Coord.X, s.Coord.Y, s.Radius)), nil
}

// SizeBand is an inclusive radius range in pixels.
type SizeBand struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether Min <= r <= Max.
func (b SizeBand) Contains(r int) bool {
	return r >= b.Min && r <= b.Max
}

// Validate rejects negative or inverted bands.
func (b SizeBand) Validate() error {
	if b.Min < 0 {
		return fmt.Errorf("minimum star radius must be >= 0, got %d", b.Min)
	}
	if b.Min > b.Max {
		return fmt.Errorf("minimum star radius %d exceeds maximum %d", b.Min, b.Max)
	}
	return nil
}

// StarSet is a collection of StarCenter deduplicated by Key.
type StarSet map[image.Point]StarCenter

// NewStarSet builds a set from stars. When several entries share a
// coordinate the first one is kept.
func NewStarSet(stars []StarCenter) StarSet {
	set := make(StarSet, len(stars))
	for _, s := range stars {
		if _, ok := set[s.Key()]; !ok {
			set[s.Key()] = s
		}
	}
	return set
}

// Contains reports whether a star with the same coordinate is present.
func (s StarSet) Contains(star StarCenter) bool {
	_, ok := s[star.Key()]
	return ok
}

// Intersect returns the entries of s whose coordinate appears in every
// other set. Values, and therefore radii, come from s.
func (s StarSet) Intersect(others ...StarSet) StarSet {
	out := make(StarSet)
	for key, star := range s {
		keep := true
		for _, o := range others {
			if _, ok := o[key]; !ok {
				keep = false
				break
			}
		}
		if keep {
			out[key] = star
		}
	}
	return out
}

// Sorted returns the stars ordered by row, then column.
func (s StarSet) Sorted() []StarCenter {
	out := make([]StarCenter, 0, len(s))
	for _, star := range s {
		out = append(out, star)
	}
	SortStars(out)
	return out
}

// SortStars orders stars in place by Y, then X, then radius.
func SortStars(stars []StarCenter) {
	sort.Slice(stars, func(i, j int) bool {
		a, b := stars[i], stars[j]
		if a.Coord.Y != b.Coord.Y {
			return a.Coord.Y < b.Coord.Y
		}
		if a.Coord.X != b.Coord.X {
			return a.Coord.X < b.Coord.X
		}
		return a.Radius < b.Radius
	})
}

// Points returns the coordinates of stars in order.
func Points(stars []StarCenter) []image.Point {
	pts := make([]image.Point, len(stars))
	for i, s := range stars {
		pts[i] = s.Coord
	}
	return pts
}
