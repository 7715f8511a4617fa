package detection

import (
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// Extract finds star centers in a single-channel binary mask.
//
// Each traced contour becomes a candidate:
//   - a one-point contour has radius 1 at that point
//   - otherwise the centroid of the closed boundary polyline is the center
//     and the largest centroid-to-boundary distance is the radius
//
// Center and radius are rounded to the nearest pixel, and candidates whose
// radius falls outside band are discarded. Distinct contours that share a
// centroid are all returned.
//
// Contours are measured on up to workers goroutines (GOMAXPROCS when
// workers <= 0). Output order follows contour order.
func Extract(mask *image.Gray, band SizeBand, workers int) []StarCenter {
	contours := TraceContours(mask)
	origin := mask.Bounds().Min

	slots := make([]StarCenter, len(contours))
	keep := make([]bool, len(contours))

	var g errgroup.Group
	g.SetLimit(poolSize(workers))
	for i, c := range contours {
		i, c := i, c
		g.Go(func() error {
			star, ok := measure(c, band)
			if ok {
				star.Coord = star.Coord.Add(origin)
				slots[i], keep[i] = star, true
			}
			return nil
		})
	}
	_ = g.Wait()

	stars := make([]StarCenter, 0, len(contours))
	for i, ok := range keep {
		if ok {
			stars = append(stars, slots[i])
		}
	}
	return stars
}

// measure converts one contour to a StarCenter if it fits the band.
func measure(c Contour, band SizeBand) (StarCenter, bool) {
	if len(c) == 0 {
		return StarCenter{}, false
	}

	if len(c) == 1 {
		star := StarCenter{Coord: c[0], Radius: 1}
		return star, band.Contains(star.Radius)
	}

	center := centroid(c)
	var radius float64
	for _, p := range c {
		radius = math.Max(radius, r2.Norm(r2.Sub(vec(p), center)))
	}

	star := StarCenter{
		Coord:  image.Point{X: int(math.Round(center.X)), Y: int(math.Round(center.Y))},
		Radius: int(math.Round(radius)),
	}
	return star, band.Contains(star.Radius)
}

// centroid returns the length-weighted centroid of the closed polyline
// through c. A zero-length polyline falls back to the vertex mean.
func centroid(c Contour) r2.Vec {
	var sum r2.Vec
	var total float64
	for i := range c {
		a, b := vec(c[i]), vec(c[(i+1)%len(c)])
		length := r2.Norm(r2.Sub(b, a))
		mid := r2.Scale(0.5, r2.Add(a, b))
		sum = r2.Add(sum, r2.Scale(length, mid))
		total += length
	}
	if total > 0 {
		return r2.Scale(1/total, sum)
	}

	var mean r2.Vec
	for _, p := range c {
		mean = r2.Add(mean, vec(p))
	}
	return r2.Scale(1/float64(len(c)), mean)
}

func vec(p image.Point) r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}

func poolSize(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}
