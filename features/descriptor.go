package features

import (
	"image"

	"go.viam.com/visualodometry/frame"
)

// PatchDescriptor returns the square intensity patch of the given radius
// around pt, flattened row-major into (2*radius+1)^2 values. Samples outside
// the frame read as 0, so edge points never fault.
func PatchDescriptor(fr *frame.Frame, pt image.Point, radius int) []float64 {
	side := 2*radius + 1
	out := make([]float64, 0, side*side)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			out = append(out, float64(fr.Intensity(pt.X+dx, pt.Y+dy)))
		}
	}
	return out
}

// PatchSSD returns the sum of squared differences between two descriptors of
// equal length.
func PatchSSD(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
