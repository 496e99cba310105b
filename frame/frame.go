// Package frame contains the grayscale frame and depth map types consumed by
// the visual odometry pipeline. A Frame is a flat row-major intensity buffer;
// depth is optional and attached per frame when a depth sensor is present.
package frame

import (
	"image"

	"github.com/pkg/errors"
)

// Frame is a single grayscale video frame with optional per-pixel depth.
// Frames are ephemeral; the pipeline retains at most one previous frame.
type Frame struct {
	width  int
	height int
	pix    []uint8
	depth  *DepthMap
}

// New returns an all-black frame of the given dimensions.
func New(width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("frame dimensions must be positive, got %dx%d", width, height)
	}
	return &Frame{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height),
	}, nil
}

// FromImage converts any image to a grayscale Frame using the luma
// approximation from the stdlib gray color model.
func FromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	fr := &Frame{
		width:  w,
		height: h,
		pix:    make([]uint8, w*h),
	}
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gray.Set(x, y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	copy(fr.pix, gray.Pix)
	return fr
}

// Width returns the frame width in pixels.
func (fr *Frame) Width() int {
	return fr.width
}

// Height returns the frame height in pixels.
func (fr *Frame) Height() int {
	return fr.height
}

// Bounds returns the pixel bounds of the frame.
func (fr *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, fr.width, fr.height)
}

// In reports whether the point lies inside the frame.
func (fr *Frame) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < fr.width && y < fr.height
}

// Intensity returns the grayscale value at (x, y). Reads outside the buffer
// return 0 so that samplers near the border never fault.
func (fr *Frame) Intensity(x, y int) uint8 {
	if !fr.In(x, y) {
		return 0
	}
	return fr.pix[y*fr.width+x]
}

// SetIntensity writes the grayscale value at (x, y). Writes outside the
// buffer are ignored.
func (fr *Frame) SetIntensity(x, y int, v uint8) {
	if !fr.In(x, y) {
		return
	}
	fr.pix[y*fr.width+x] = v
}

// AttachDepth associates a depth map with the frame. The map must match the
// frame's dimensions.
func (fr *Frame) AttachDepth(dm *DepthMap) error {
	if dm == nil {
		fr.depth = nil
		return nil
	}
	if dm.Width() != fr.width || dm.Height() != fr.height {
		return errors.Errorf("depth map is %dx%d but frame is %dx%d",
			dm.Width(), dm.Height(), fr.width, fr.height)
	}
	fr.depth = dm
	return nil
}

// HasDepth reports whether a depth map is attached.
func (fr *Frame) HasDepth() bool {
	return fr.depth != nil
}

// Depth returns the depth in meters at (x, y) and whether a measurement is
// available there. Zero depth values mean no measurement.
func (fr *Frame) Depth(x, y int) (float64, bool) {
	if fr.depth == nil || !fr.In(x, y) {
		return 0, false
	}
	d := fr.depth.GetDepth(x, y)
	if d <= 0 {
		return 0, false
	}
	return d, true
}
