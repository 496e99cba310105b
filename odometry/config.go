package odometry

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/visualodometry/features"
	"go.viam.com/visualodometry/landmarks"
	"go.viam.com/visualodometry/motion"
	"go.viam.com/visualodometry/tracking"
)

// Config aggregates the configuration of every pipeline stage. All values
// are fixed at construction.
type Config struct {
	Detector  features.DetectorConfig `json:"detector"`
	Tracker   tracking.TrackerConfig  `json:"tracker"`
	Estimator motion.EstimatorConfig  `json:"estimator"`
	Landmarks landmarks.MapConfig     `json:"landmarks"`

	TrajectoryMaxLength int `json:"trajectory_max_length"`
	// IdleWaitMillis is how long the frame loop waits before polling the
	// source again after it reported no frame.
	IdleWaitMillis int `json:"idle_wait_millis"`
}

// DefaultConfig returns the tuned pipeline configuration for frames of the
// given resolution.
func DefaultConfig(width, height int) Config {
	return Config{
		Detector:            features.DefaultDetectorConfig(),
		Tracker:             tracking.DefaultTrackerConfig(),
		Estimator:           motion.DefaultEstimatorConfig(width, height),
		Landmarks:           landmarks.DefaultMapConfig(width, height),
		TrajectoryMaxLength: 500,
		IdleWaitMillis:      20,
	}
}

// Validate ensures all parts of the config are valid, reporting every
// invalid section rather than just the first.
func (cfg *Config) Validate(path string) error {
	var err error
	err = multierr.Append(err, cfg.Detector.Validate(path+".detector"))
	err = multierr.Append(err, cfg.Tracker.Validate(path+".tracker"))
	err = multierr.Append(err, cfg.Estimator.Validate(path+".estimator"))
	err = multierr.Append(err, cfg.Landmarks.Validate(path+".landmarks"))
	if cfg.TrajectoryMaxLength <= 0 {
		err = multierr.Append(err, utils.NewConfigValidationError(path,
			errors.New("trajectory_max_length must be positive")))
	}
	if cfg.IdleWaitMillis <= 0 {
		err = multierr.Append(err, utils.NewConfigValidationError(path,
			errors.New("idle_wait_millis must be positive")))
	}
	return err
}
