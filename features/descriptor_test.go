package features

import (
	"image"
	"testing"

	"go.viam.com/test"
)

func TestPatchDescriptorShape(t *testing.T) {
	fr := newTestFrame(t, 50, 50)
	fr.SetIntensity(25, 25, 200)
	fr.SetIntensity(24, 24, 100)

	desc := PatchDescriptor(fr, image.Point{25, 25}, 3)
	test.That(t, len(desc), test.ShouldEqual, 49)
	// row-major: center sits at index 24
	test.That(t, desc[24], test.ShouldEqual, 200)
	// one up-left of center is index 16
	test.That(t, desc[16], test.ShouldEqual, 100)
}

func TestPatchDescriptorAtEdgeReadsZero(t *testing.T) {
	fr := newTestFrame(t, 50, 50)
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			fr.SetIntensity(x, y, 255)
		}
	}
	desc := PatchDescriptor(fr, image.Point{0, 0}, 3)
	test.That(t, len(desc), test.ShouldEqual, 49)
	// everything above or left of the frame reads as zero
	test.That(t, desc[0], test.ShouldEqual, 0)
	test.That(t, desc[24], test.ShouldEqual, 255)
	test.That(t, desc[48], test.ShouldEqual, 255)
}

func TestPatchSSD(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 4, 0}
	test.That(t, PatchSSD(a, b), test.ShouldEqual, 13)
	test.That(t, PatchSSD(a, a), test.ShouldEqual, 0)
}
