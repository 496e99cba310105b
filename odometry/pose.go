package odometry

// Pose is the camera's instantaneous 2D position and heading in a
// self-consistent world frame, in meters and radians. There is exactly one
// live pose per pipeline; it is mutated additively each cycle and reset only
// by explicit operator action.
type Pose struct {
	X       float64
	Y       float64
	Heading float64
}
