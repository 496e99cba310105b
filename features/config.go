package features

import (
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// DetectorConfig contains the parameters for corner detection and
// obstacle/environment classification.
type DetectorConfig struct {
	// Corner detection.
	Stride             int `json:"stride"`
	BorderMargin       int `json:"border_margin"`
	IntensityThreshold int `json:"intensity_threshold"`
	MinRingMatches     int `json:"min_ring_matches"`
	NMSCellSize        int `json:"nms_cell_size"`

	// Cluster classification.
	ClusterCellSize     int     `json:"cluster_cell_size"`
	MinDensityThreshold float64 `json:"min_density_threshold"`
	DensityMultiplier   float64 `json:"density_multiplier"`
	DynamicDensityBoost float64 `json:"dynamic_density_boost"`
	NearDepthM          float64 `json:"near_depth_m"`
	MidDepthMinM        float64 `json:"mid_depth_min_m"`
	MidDepthMaxM        float64 `json:"mid_depth_max_m"`
	MidDepthMinDensity  float64 `json:"mid_depth_min_density"`
	BalancedStrengthMin  int     `json:"balanced_strength_min"`
	BalancedMaxDiff      int     `json:"balanced_max_diff"`
	CentralXMin          float64 `json:"central_x_min"`
	CentralXMax          float64 `json:"central_x_max"`
	CentralYMin          float64 `json:"central_y_min"`
	CentralYMax          float64 `json:"central_y_max"`
	CentralClusterRatio  float64 `json:"central_cluster_ratio"`
	StrongStrengthMin    int     `json:"strong_strength_min"`
	DominantClusterRatio float64 `json:"dominant_cluster_ratio"`

	MaxFeatures int `json:"max_features"`
}

// DefaultDetectorConfig returns the tuned detector parameters.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Stride:               3,
		BorderMargin:         10,
		IntensityThreshold:   20,
		MinRingMatches:       12,
		NMSCellSize:          6,
		ClusterCellSize:      35,
		MinDensityThreshold:  2.5,
		DensityMultiplier:    1.4,
		DynamicDensityBoost:  1.1,
		NearDepthM:           1.8,
		MidDepthMinM:         0.5,
		MidDepthMaxM:         4.0,
		MidDepthMinDensity:   2,
		BalancedStrengthMin:  15,
		BalancedMaxDiff:      2,
		CentralXMin:          0.30,
		CentralXMax:          0.70,
		CentralYMin:          0.20,
		CentralYMax:          0.80,
		CentralClusterRatio:  1.4,
		StrongStrengthMin:    16,
		DominantClusterRatio: 2.2,
		MaxFeatures:          1500,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *DetectorConfig) Validate(path string) error {
	if cfg.Stride <= 0 {
		return utils.NewConfigValidationError(path, errors.New("stride must be positive"))
	}
	if cfg.BorderMargin < ringRadius {
		return utils.NewConfigValidationError(path,
			errors.Errorf("border_margin must be at least the ring radius %d", ringRadius))
	}
	if cfg.IntensityThreshold <= 0 {
		return utils.NewConfigValidationError(path, errors.New("intensity_threshold must be positive"))
	}
	if cfg.MinRingMatches <= 0 || cfg.MinRingMatches > len(ringOffsets) {
		return utils.NewConfigValidationError(path,
			errors.Errorf("min_ring_matches must be in [1, %d]", len(ringOffsets)))
	}
	if cfg.NMSCellSize <= 0 {
		return utils.NewConfigValidationError(path, errors.New("nms_cell_size must be positive"))
	}
	if cfg.ClusterCellSize <= 0 {
		return utils.NewConfigValidationError(path, errors.New("cluster_cell_size must be positive"))
	}
	if cfg.MinDensityThreshold <= 0 {
		return utils.NewConfigValidationError(path, errors.New("min_density_threshold must be positive"))
	}
	if cfg.DensityMultiplier <= 0 || cfg.DynamicDensityBoost <= 0 {
		return utils.NewConfigValidationError(path, errors.New("density multipliers must be positive"))
	}
	if cfg.NearDepthM <= 0 {
		return utils.NewConfigValidationError(path, errors.New("near_depth_m must be positive"))
	}
	if cfg.MidDepthMinM < 0 || cfg.MidDepthMaxM <= cfg.MidDepthMinM {
		return utils.NewConfigValidationError(path, errors.New("mid depth band must be a positive interval"))
	}
	if cfg.BalancedStrengthMin <= 0 || cfg.StrongStrengthMin <= 0 {
		return utils.NewConfigValidationError(path, errors.New("strength thresholds must be positive"))
	}
	if cfg.BalancedMaxDiff < 0 {
		return utils.NewConfigValidationError(path, errors.New("balanced_max_diff must be non-negative"))
	}
	if cfg.CentralXMin < 0 || cfg.CentralXMax > 1 || cfg.CentralXMin >= cfg.CentralXMax ||
		cfg.CentralYMin < 0 || cfg.CentralYMax > 1 || cfg.CentralYMin >= cfg.CentralYMax {
		return utils.NewConfigValidationError(path, errors.New("central region bounds must satisfy 0 <= min < max <= 1"))
	}
	if cfg.CentralClusterRatio <= 0 || cfg.DominantClusterRatio <= 0 {
		return utils.NewConfigValidationError(path, errors.New("cluster ratios must be positive"))
	}
	if cfg.MaxFeatures <= 0 {
		return utils.NewConfigValidationError(path, errors.New("max_features must be positive"))
	}
	return nil
}
