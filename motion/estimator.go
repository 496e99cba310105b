// Package motion estimates the per-cycle 2D pose delta from feature
// correspondences. Translation is the per-axis median of match displacements;
// rotation is the mean of optical-center angular deltas after outlier
// rejection. This is an O(n) planar, fronto-parallel approximation; full
// multi-view geometry is out of scope for the accuracy target.
package motion

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/visualodometry/tracking"
)

// Delta is the estimated camera motion between two consecutive frames, in
// meters and radians.
type Delta struct {
	DX       float64
	DY       float64
	DHeading float64
}

// IsZero reports whether the delta carries no motion.
func (d Delta) IsZero() bool {
	return d.DX == 0 && d.DY == 0 && d.DHeading == 0
}

// EstimatorConfig contains the parameters for pose-delta estimation.
type EstimatorConfig struct {
	// MinCorrespondences is the minimum match count below which the cycle
	// reports no observable motion.
	MinCorrespondences int `json:"min_correspondences"`
	// MetersPerPixel converts median pixel displacement to meters. Tuned
	// empirically; depends on the camera field of view.
	MetersPerPixel float64 `json:"meters_per_pixel"`
	// MaxRotationRad bounds the per-match angular delta; larger deltas are
	// treated as translational parallax noise, not rotation.
	MaxRotationRad float64 `json:"max_rotation_rad"`
	// OpticalCenterX and OpticalCenterY are the rotation reference point in
	// pixel coordinates.
	OpticalCenterX float64 `json:"optical_center_x"`
	OpticalCenterY float64 `json:"optical_center_y"`
}

// DefaultEstimatorConfig returns the tuned estimator parameters for a frame
// of the given resolution.
func DefaultEstimatorConfig(width, height int) EstimatorConfig {
	return EstimatorConfig{
		MinCorrespondences: 5,
		MetersPerPixel:     0.01,
		MaxRotationRad:     0.3,
		OpticalCenterX:     float64(width) / 2,
		OpticalCenterY:     float64(height) / 2,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *EstimatorConfig) Validate(path string) error {
	if cfg.MinCorrespondences <= 0 {
		return utils.NewConfigValidationError(path, errors.New("min_correspondences must be positive"))
	}
	if cfg.MetersPerPixel <= 0 {
		return utils.NewConfigValidationError(path, errors.New("meters_per_pixel must be positive"))
	}
	if cfg.MaxRotationRad <= 0 || cfg.MaxRotationRad > math.Pi {
		return utils.NewConfigValidationError(path, errors.New("max_rotation_rad must be in (0, pi]"))
	}
	if cfg.OpticalCenterX < 0 || cfg.OpticalCenterY < 0 {
		return utils.NewConfigValidationError(path, errors.New("optical center must be non-negative"))
	}
	return nil
}

// Estimator turns correspondences into pose deltas.
type Estimator struct {
	cfg    EstimatorConfig
	logger golog.Logger
}

// NewEstimator validates the config and returns an estimator.
func NewEstimator(cfg EstimatorConfig, logger golog.Logger) (*Estimator, error) {
	if err := cfg.Validate("estimator"); err != nil {
		return nil, err
	}
	return &Estimator{cfg: cfg, logger: logger}, nil
}

// Estimate returns the pose delta for the given matches. Fewer than
// MinCorrespondences matches yields a zero delta: no observable motion, not
// a failure.
func (e *Estimator) Estimate(matches []tracking.Correspondence) Delta {
	if len(matches) < e.cfg.MinCorrespondences {
		e.logger.Debugw("too few correspondences for motion", "matches", len(matches))
		return Delta{}
	}

	dxs := make([]float64, len(matches))
	dys := make([]float64, len(matches))
	for i, m := range matches {
		dxs[i] = float64(m.Curr.X - m.Prev.Point.X)
		dys[i] = float64(m.Curr.Y - m.Prev.Point.Y)
	}
	// per-axis medians are robust to outlier matches from moving objects
	medX, err := stats.Median(dxs)
	if err != nil {
		return Delta{}
	}
	medY, err := stats.Median(dys)
	if err != nil {
		return Delta{}
	}

	// camera-observed motion maps to opposite ego-motion on x
	return Delta{
		DX:       -medX * e.cfg.MetersPerPixel,
		DY:       medY * e.cfg.MetersPerPixel,
		DHeading: e.estimateRotation(matches),
	}
}

// estimateRotation averages the angular deltas of matches about the optical
// center, discarding deltas beyond the configured bound.
func (e *Estimator) estimateRotation(matches []tracking.Correspondence) float64 {
	center := r2.Point{X: e.cfg.OpticalCenterX, Y: e.cfg.OpticalCenterY}
	var sum float64
	var kept int
	for _, m := range matches {
		prevAngle := math.Atan2(float64(m.Prev.Point.Y)-center.Y, float64(m.Prev.Point.X)-center.X)
		currAngle := math.Atan2(float64(m.Curr.Y)-center.Y, float64(m.Curr.X)-center.X)
		d := NormalizeAngle(currAngle - prevAngle)
		if math.Abs(d) > e.cfg.MaxRotationRad {
			continue
		}
		sum += d
		kept++
	}
	if kept == 0 {
		return 0
	}
	return sum / float64(kept)
}

// NormalizeAngle wraps an angle into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
