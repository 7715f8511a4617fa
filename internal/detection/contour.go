package detection

import "image"

// Contour is the ordered, closed boundary of one bright region. A region of a
// single pixel has a one-point contour.
type Contour []image.Point

// neighbors lists the 8-connected offsets in clockwise order (y grows down),
// starting east.
var neighbors = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

const west = 4

// direction returns the index in neighbors of offset d, or -1.
func direction(d image.Point) int {
	for i, n := range neighbors {
		if n == d {
			return i
		}
	}
	return -1
}

// binaryGrid is a read-only view of a mask as foreground flags.
type binaryGrid struct {
	width, height int
	fg            []bool
}

func newBinaryGrid(mask *image.Gray) binaryGrid {
	b := mask.Bounds()
	g := binaryGrid{width: b.Dx(), height: b.Dy(), fg: make([]bool, b.Dx()*b.Dy())}
	for y := 0; y < g.height; y++ {
		off := mask.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < g.width; x++ {
			g.fg[y*g.width+x] = mask.Pix[off+x] != 0
		}
	}
	return g
}

// at treats everything outside the grid as background.
func (g binaryGrid) at(p image.Point) bool {
	if p.X < 0 || p.Y < 0 || p.X >= g.width || p.Y >= g.height {
		return false
	}
	return g.fg[p.Y*g.width+p.X]
}

// TraceContours returns the outer boundary of every 8-connected foreground
// region of mask, in raster order of each region's first pixel. Any non-zero
// pixel is foreground. Holes inside regions are not traced.
//
// Coordinates are relative to mask.Bounds().Min.
func TraceContours(mask *image.Gray) []Contour {
	g := newBinaryGrid(mask)
	visited := make([]bool, len(g.fg))
	contours := make([]Contour, 0)

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			i := y*g.width + x
			if !g.fg[i] || visited[i] {
				continue
			}
			start := image.Point{X: x, Y: y}
			markRegion(g, visited, start)
			contours = append(contours, traceBoundary(g, start))
		}
	}
	return contours
}

// markRegion flood-fills the 8-connected region containing start.
func markRegion(g binaryGrid, visited []bool, start image.Point) {
	stack := []image.Point{start}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !g.at(p) {
			continue
		}
		i := p.Y*g.width + p.X
		if visited[i] {
			continue
		}
		visited[i] = true

		for _, d := range neighbors {
			stack = append(stack, p.Add(d))
		}
	}
}

// traceBoundary walks the outer boundary clockwise with Moore-neighbor
// tracing. start must be the first pixel of its region in raster order, so
// its west, north-west, north and north-east neighbors are background.
//
// Tracing stops when the walk is about to repeat its first move (Jacob's
// criterion), which handles regions that pass through start more than once.
func traceBoundary(g binaryGrid, start image.Point) Contour {
	contour := Contour{start}

	first, firstBack, ok := step(g, start, west)
	if !ok {
		return contour
	}

	cur, back := first, firstBack
	limit := 4*len(g.fg) + 8
	for n := 0; n < limit; n++ {
		if cur == start {
			next, _, _ := step(g, cur, back)
			if next == first {
				break
			}
		}
		contour = append(contour, cur)
		cur, back, _ = step(g, cur, back)
	}
	return contour
}

// step scans the neighbors of p clockwise, starting just after the
// background direction back, and returns the first foreground neighbor along
// with the direction from it to the last background pixel examined.
func step(g binaryGrid, p image.Point, back int) (image.Point, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		q := p.Add(neighbors[d])
		if !g.at(q) {
			continue
		}
		prev := p.Add(neighbors[(back+i-1)%8])
		return q, direction(prev.Sub(q)), true
	}
	return p, back, false
}
