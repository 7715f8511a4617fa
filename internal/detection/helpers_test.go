package detection

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/anshap1719/stardetect/internal/raster"
)

// createMask creates an all-background single-channel mask.
func createMask(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// fillDisk sets every pixel within radius of (cx, cy) to v.
func fillDisk(img *image.Gray, cx, cy, radius int, v uint8) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				img.SetGray(x, y, color.Gray{Y: v})
			}
		}
	}
}

// addGaussian adds a truncated Gaussian spot centered on a pixel. Values
// depend only on the squared distance, so every spot is symmetric.
func addGaussian(img *image.Gray, cx, cy int, amplitude, sigma float64, cut int) {
	for y := cy - cut; y <= cy+cut; y++ {
		for x := cx - cut; x <= cx+cut; x++ {
			d2 := (x-cx)*(x-cx) + (y-cy)*(y-cy)
			if d2 > cut*cut {
				continue
			}
			v := float64(img.GrayAt(x, y).Y) + amplitude*math.Exp(-float64(d2)/(2*sigma*sigma))
			img.SetGray(x, y, color.Gray{Y: uint8(math.Min(255, math.Round(v)))})
		}
	}
}

// toBuffer converts an image for use with the optimizer and Binarize.
func toBuffer(t *testing.T, img image.Image) *raster.Buffer {
	t.Helper()
	b, err := raster.FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	return b
}

// consensusCount binarizes a gray image at cutoff and counts consensus stars.
func consensusCount(t *testing.T, img *image.Gray, cutoff uint8, band SizeBand) int {
	t.Helper()
	r, g, b, err := Binarize(toBuffer(t, img), cutoff)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	stars, err := Consensus(r, g, b, band, 2)
	if err != nil {
		t.Fatalf("Consensus failed: %v", err)
	}
	return len(stars)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
