package odometry

import (
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestTrajectoryStartsAtOrigin(t *testing.T) {
	tr := newTrajectory(5)
	pts := tr.snapshot()
	test.That(t, len(pts), test.ShouldEqual, 1)
	test.That(t, pts[0], test.ShouldResemble, r2.Point{})
	test.That(t, tr.last(), test.ShouldResemble, r2.Point{})
}

func TestTrajectoryAppendAndOverflow(t *testing.T) {
	tr := newTrajectory(3)
	tr.append(r2.Point{X: 1})
	tr.append(r2.Point{X: 2})
	test.That(t, len(tr.snapshot()), test.ShouldEqual, 3)

	// overflow drops the oldest point first
	tr.append(r2.Point{X: 3})
	pts := tr.snapshot()
	test.That(t, len(pts), test.ShouldEqual, 3)
	test.That(t, pts[0], test.ShouldResemble, r2.Point{X: 1})
	test.That(t, pts[1], test.ShouldResemble, r2.Point{X: 2})
	test.That(t, pts[2], test.ShouldResemble, r2.Point{X: 3})
	test.That(t, tr.last(), test.ShouldResemble, r2.Point{X: 3})
}

func TestTrajectoryReset(t *testing.T) {
	tr := newTrajectory(4)
	tr.append(r2.Point{X: 1, Y: 2})
	tr.reset()
	pts := tr.snapshot()
	test.That(t, len(pts), test.ShouldEqual, 1)
	test.That(t, pts[0], test.ShouldResemble, r2.Point{})
}

func TestTrajectorySnapshotIsACopy(t *testing.T) {
	tr := newTrajectory(4)
	pts := tr.snapshot()
	pts[0] = r2.Point{X: 99}
	test.That(t, tr.last(), test.ShouldResemble, r2.Point{})
}
