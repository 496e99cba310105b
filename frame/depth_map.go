package frame

import (
	"github.com/pkg/errors"
)

// DepthMap stores per-pixel depth in meters. A value of 0 means the sensor
// produced no measurement for that pixel.
type DepthMap struct {
	width  int
	height int
	data   []float64
}

// NewDepthMap returns an empty depth map of the given dimensions.
func NewDepthMap(width, height int) (*DepthMap, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("depth map dimensions must be positive, got %dx%d", width, height)
	}
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]float64, width*height),
	}, nil
}

// Width returns the depth map width in pixels.
func (dm *DepthMap) Width() int {
	return dm.width
}

// Height returns the depth map height in pixels.
func (dm *DepthMap) Height() int {
	return dm.height
}

// HasData reports whether the map has a backing buffer.
func (dm *DepthMap) HasData() bool {
	return dm.width > 0 && dm.data != nil
}

// GetDepth returns the depth in meters at (x, y), 0 outside the buffer.
func (dm *DepthMap) GetDepth(x, y int) float64 {
	if x < 0 || y < 0 || x >= dm.width || y >= dm.height {
		return 0
	}
	return dm.data[y*dm.width+x]
}

// SetDepth writes the depth in meters at (x, y). Writes outside the buffer
// are ignored.
func (dm *DepthMap) SetDepth(x, y int, meters float64) {
	if x < 0 || y < 0 || x >= dm.width || y >= dm.height {
		return
	}
	dm.data[y*dm.width+x] = meters
}

// Fill sets every pixel to the given depth. Useful for synthetic scenes.
func (dm *DepthMap) Fill(meters float64) {
	for i := range dm.data {
		dm.data[i] = meters
	}
}
