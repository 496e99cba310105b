package features

import (
	"image"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"go.viam.com/visualodometry/frame"
)

// newTestFrame returns a black frame of the given size.
func newTestFrame(t *testing.T, w, h int) *frame.Frame {
	t.Helper()
	fr, err := frame.New(w, h)
	test.That(t, err, test.ShouldBeNil)
	return fr
}

// drawDot paints a bright square of the given side length with its top-left
// corner at (x0, y0).
func drawDot(fr *frame.Frame, x0, y0, side int) {
	for dy := 0; dy < side; dy++ {
		for dx := 0; dx < side; dx++ {
			fr.SetIntensity(x0+dx, y0+dy, 255)
		}
	}
}

// drawDotCentered paints a 3x3 bright dot centered at (cx, cy). Centers are
// chosen on the sampling lattice in tests, so each dot yields exactly one
// corner candidate of maximal strength.
func drawDotCentered(fr *frame.Frame, cx, cy int) {
	drawDot(fr, cx-1, cy-1, 3)
}

var dotCenters = []image.Point{
	{40, 40}, {70, 40}, {100, 40},
	{40, 70}, {70, 70}, {100, 70},
	{40, 100}, {130, 130},
}

func dotScene(t *testing.T) *frame.Frame {
	t.Helper()
	fr := newTestFrame(t, 200, 200)
	for _, c := range dotCenters {
		drawDotCentered(fr, c.X, c.Y)
	}
	return fr
}

func TestDetectorConfigValidate(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := DefaultDetectorConfig()
	test.That(t, cfg.Validate("detector"), test.ShouldBeNil)

	bad := cfg
	bad.Stride = 0
	_, err := NewDetector(bad, logger)
	test.That(t, err, test.ShouldNotBeNil)

	bad = cfg
	bad.IntensityThreshold = -1
	_, err = NewDetector(bad, logger)
	test.That(t, err, test.ShouldNotBeNil)

	bad = cfg
	bad.MinRingMatches = 17
	_, err = NewDetector(bad, logger)
	test.That(t, err, test.ShouldNotBeNil)

	bad = cfg
	bad.MaxFeatures = 0
	_, err = NewDetector(bad, logger)
	test.That(t, err, test.ShouldNotBeNil)

	bad = cfg
	bad.MidDepthMaxM = bad.MidDepthMinM
	_, err = NewDetector(bad, logger)
	test.That(t, err, test.ShouldNotBeNil)

	bad = cfg
	bad.CentralXMin = 0.8
	_, err = NewDetector(bad, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDetectEmptyFrame(t *testing.T) {
	logger := golog.NewTestLogger(t)
	det, err := NewDetector(DefaultDetectorConfig(), logger)
	test.That(t, err, test.ShouldBeNil)

	fr := newTestFrame(t, 200, 200)
	feats := det.Detect(fr)
	test.That(t, len(feats), test.ShouldEqual, 0)
}

func TestDetectIsolatedDots(t *testing.T) {
	logger := golog.NewTestLogger(t)
	det, err := NewDetector(DefaultDetectorConfig(), logger)
	test.That(t, err, test.ShouldBeNil)

	fr := dotScene(t)
	feats := det.Detect(fr)
	test.That(t, len(feats), test.ShouldEqual, len(dotCenters))

	found := map[image.Point]bool{}
	for _, f := range feats {
		// a lone 3x3 dot has its whole comparison ring on background
		test.That(t, f.Strength, test.ShouldEqual, 16)
		test.That(t, f.Darker, test.ShouldEqual, 16)
		test.That(t, f.Brighter, test.ShouldEqual, 0)
		test.That(t, f.Class, test.ShouldEqual, ClassObstacle)
		test.That(t, f.HasDepth, test.ShouldBeFalse)
		found[f.Point] = true
	}
	for _, c := range dotCenters {
		test.That(t, found[c], test.ShouldBeTrue)
	}
}

func TestDetectRespectsBorderMargin(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := DefaultDetectorConfig()
	det, err := NewDetector(cfg, logger)
	test.That(t, err, test.ShouldBeNil)

	fr := dotScene(t)
	// bright texture hugging the frame edge must not produce features
	drawDot(fr, 0, 0, 8)
	drawDot(fr, 192, 192, 8)

	feats := det.Detect(fr)
	test.That(t, len(feats), test.ShouldBeGreaterThan, 0)
	for _, f := range feats {
		test.That(t, f.Point.X, test.ShouldBeGreaterThanOrEqualTo, cfg.BorderMargin)
		test.That(t, f.Point.Y, test.ShouldBeGreaterThanOrEqualTo, cfg.BorderMargin)
		test.That(t, f.Point.X, test.ShouldBeLessThan, fr.Width()-cfg.BorderMargin)
		test.That(t, f.Point.Y, test.ShouldBeLessThan, fr.Height()-cfg.BorderMargin)
	}
}

func TestDetectFeatureCap(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := DefaultDetectorConfig()
	cfg.MaxFeatures = 5
	det, err := NewDetector(cfg, logger)
	test.That(t, err, test.ShouldBeNil)

	feats := det.Detect(dotScene(t))
	test.That(t, len(feats), test.ShouldEqual, 5)
}

func TestSuppressKeepsStrongestPerCell(t *testing.T) {
	logger := golog.NewTestLogger(t)
	det, err := NewDetector(DefaultDetectorConfig(), logger)
	test.That(t, err, test.ShouldBeNil)

	candidates := []Feature{
		{Point: image.Point{12, 12}, Strength: 12},
		{Point: image.Point{14, 13}, Strength: 15}, // same 6px cell, stronger
		{Point: image.Point{30, 12}, Strength: 13},
	}
	kept := det.suppress(candidates)
	test.That(t, len(kept), test.ShouldEqual, 2)
	test.That(t, kept[0].Point, test.ShouldResemble, image.Point{14, 13})
	test.That(t, kept[1].Point, test.ShouldResemble, image.Point{30, 12})
}

func TestSuppressTiePrefersEarlier(t *testing.T) {
	logger := golog.NewTestLogger(t)
	det, err := NewDetector(DefaultDetectorConfig(), logger)
	test.That(t, err, test.ShouldBeNil)

	candidates := []Feature{
		{Point: image.Point{12, 12}, Strength: 14},
		{Point: image.Point{14, 13}, Strength: 14},
	}
	kept := det.suppress(candidates)
	test.That(t, len(kept), test.ShouldEqual, 1)
	test.That(t, kept[0].Point, test.ShouldResemble, image.Point{12, 12})
}
