package frame

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"go.viam.com/test"
)

func TestNewFrame(t *testing.T) {
	fr, err := New(64, 48)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fr.Width(), test.ShouldEqual, 64)
	test.That(t, fr.Height(), test.ShouldEqual, 48)
	test.That(t, fr.Bounds(), test.ShouldResemble, image.Rect(0, 0, 64, 48))

	_, err = New(0, 48)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = New(64, -1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestIntensityOutOfBounds(t *testing.T) {
	fr, err := New(10, 10)
	test.That(t, err, test.ShouldBeNil)
	fr.SetIntensity(5, 5, 200)
	test.That(t, fr.Intensity(5, 5), test.ShouldEqual, 200)
	// out-of-bounds reads are zero, never a fault
	test.That(t, fr.Intensity(-1, 5), test.ShouldEqual, 0)
	test.That(t, fr.Intensity(5, 10), test.ShouldEqual, 0)
	test.That(t, fr.Intensity(10, 5), test.ShouldEqual, 0)
	// out-of-bounds writes are dropped
	fr.SetIntensity(-3, 0, 9)
	fr.SetIntensity(0, 99, 9)
}

func TestFromImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	white := color.Gray{255}
	draw.Draw(img, image.Rect(5, 5, 10, 10), &image.Uniform{white}, image.Point{}, draw.Src)
	fr := FromImage(img)
	test.That(t, fr.Width(), test.ShouldEqual, 20)
	test.That(t, fr.Height(), test.ShouldEqual, 20)
	test.That(t, fr.Intensity(7, 7), test.ShouldEqual, 255)
	test.That(t, fr.Intensity(0, 0), test.ShouldEqual, 0)
}

func TestAttachDepth(t *testing.T) {
	fr, err := New(30, 20)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fr.HasDepth(), test.ShouldBeFalse)

	_, ok := fr.Depth(3, 3)
	test.That(t, ok, test.ShouldBeFalse)

	wrong, err := NewDepthMap(10, 10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fr.AttachDepth(wrong), test.ShouldNotBeNil)

	dm, err := NewDepthMap(30, 20)
	test.That(t, err, test.ShouldBeNil)
	dm.SetDepth(3, 3, 1.5)
	test.That(t, fr.AttachDepth(dm), test.ShouldBeNil)
	test.That(t, fr.HasDepth(), test.ShouldBeTrue)

	d, ok := fr.Depth(3, 3)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, d, test.ShouldEqual, 1.5)

	// zero depth means no measurement
	_, ok = fr.Depth(4, 4)
	test.That(t, ok, test.ShouldBeFalse)
	// outside the buffer means no measurement
	_, ok = fr.Depth(-1, 0)
	test.That(t, ok, test.ShouldBeFalse)

	test.That(t, fr.AttachDepth(nil), test.ShouldBeNil)
	test.That(t, fr.HasDepth(), test.ShouldBeFalse)
}

func TestDepthMapFill(t *testing.T) {
	dm, err := NewDepthMap(8, 8)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dm.HasData(), test.ShouldBeTrue)
	dm.Fill(2.25)
	test.That(t, dm.GetDepth(0, 0), test.ShouldEqual, 2.25)
	test.That(t, dm.GetDepth(7, 7), test.ShouldEqual, 2.25)
	test.That(t, dm.GetDepth(8, 8), test.ShouldEqual, 0)
}
