package odometry

import (
	"github.com/golang/geo/r2"
)

// trajectory is the append-only, capacity-bounded sequence of pipeline
// positions. On overflow the oldest point is dropped. It always holds at
// least the origin point.
type trajectory struct {
	maxLen int
	points []r2.Point
}

func newTrajectory(maxLen int) *trajectory {
	tr := &trajectory{maxLen: maxLen}
	tr.reset()
	return tr
}

func (tr *trajectory) append(pt r2.Point) {
	if len(tr.points) == tr.maxLen {
		copy(tr.points, tr.points[1:])
		tr.points = tr.points[:len(tr.points)-1]
	}
	tr.points = append(tr.points, pt)
}

func (tr *trajectory) last() r2.Point {
	return tr.points[len(tr.points)-1]
}

func (tr *trajectory) reset() {
	tr.points = tr.points[:0]
	tr.points = append(tr.points, r2.Point{})
}

// snapshot returns a copy of the points for read-only consumers.
func (tr *trajectory) snapshot() []r2.Point {
	out := make([]r2.Point, len(tr.points))
	copy(out, tr.points)
	return out
}
