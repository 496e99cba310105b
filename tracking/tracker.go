// Package tracking implements frame-to-frame correspondence search. Each
// previous-frame feature is matched against the current frame by exhaustive
// patch comparison over a small square window, trading per-pixel accuracy for
// a predictable worst-case cost per cycle.
package tracking

import (
	"image"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/visualodometry/features"
	"go.viam.com/visualodometry/frame"
)

// Correspondence is a posited match of one previous-frame feature in the
// current frame. Created by the tracker and consumed once by the estimator.
type Correspondence struct {
	Prev features.Feature
	Curr image.Point
	Cost float64
}

// TrackerConfig contains the parameters for the windowed patch search.
type TrackerConfig struct {
	SearchRadius int     `json:"search_radius"`
	SearchStep   int     `json:"search_step"`
	SampleCap    int     `json:"sample_cap"`
	PatchRadius  int     `json:"patch_radius"`
	MaxSSD       float64 `json:"max_ssd"`
	BorderMargin int     `json:"border_margin"`
}

// DefaultTrackerConfig returns the tuned tracker parameters.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		SearchRadius: 12,
		SearchStep:   2,
		SampleCap:    300,
		PatchRadius:  3,
		MaxSSD:       20000,
		BorderMargin: 10,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *TrackerConfig) Validate(path string) error {
	if cfg.SearchRadius <= 0 {
		return utils.NewConfigValidationError(path, errors.New("search_radius must be positive"))
	}
	if cfg.SearchStep <= 0 || cfg.SearchStep > cfg.SearchRadius {
		return utils.NewConfigValidationError(path, errors.New("search_step must be in [1, search_radius]"))
	}
	if cfg.SampleCap <= 0 {
		return utils.NewConfigValidationError(path, errors.New("sample_cap must be positive"))
	}
	if cfg.PatchRadius <= 0 {
		return utils.NewConfigValidationError(path, errors.New("patch_radius must be positive"))
	}
	if cfg.MaxSSD <= 0 {
		return utils.NewConfigValidationError(path, errors.New("max_ssd must be positive"))
	}
	if cfg.BorderMargin < 0 {
		return utils.NewConfigValidationError(path, errors.New("border_margin must be non-negative"))
	}
	return nil
}

// Tracker searches for feature correspondences between consecutive frames.
type Tracker struct {
	cfg    TrackerConfig
	logger golog.Logger
}

// NewTracker validates the config and returns a tracker.
func NewTracker(cfg TrackerConfig, logger golog.Logger) (*Tracker, error) {
	if err := cfg.Validate("tracker"); err != nil {
		return nil, err
	}
	return &Tracker{cfg: cfg, logger: logger}, nil
}

// Track matches previous-frame features into the current frame. At most
// SampleCap features are processed; the rest are skipped by striding. A
// feature whose best match cost is above MaxSSD is dropped silently.
func (t *Tracker) Track(prev *frame.Frame, prevFeats []features.Feature, curr *frame.Frame) []Correspondence {
	if len(prevFeats) == 0 {
		return nil
	}
	stride := 1
	if len(prevFeats) > t.cfg.SampleCap {
		stride = (len(prevFeats) + t.cfg.SampleCap - 1) / t.cfg.SampleCap
	}

	out := make([]Correspondence, 0, t.cfg.SampleCap)
	dropped := 0
	for i := 0; i < len(prevFeats); i += stride {
		feat := prevFeats[i]
		refPatch := features.PatchDescriptor(prev, feat.Point, t.cfg.PatchRadius)

		bestCost := -1.0
		var bestPt image.Point
		for dy := -t.cfg.SearchRadius; dy <= t.cfg.SearchRadius; dy += t.cfg.SearchStep {
			for dx := -t.cfg.SearchRadius; dx <= t.cfg.SearchRadius; dx += t.cfg.SearchStep {
				cand := image.Point{feat.Point.X + dx, feat.Point.Y + dy}
				if !t.inSearchableArea(curr, cand) {
					continue
				}
				cost := features.PatchSSD(refPatch, features.PatchDescriptor(curr, cand, t.cfg.PatchRadius))
				if bestCost < 0 || cost < bestCost {
					bestCost = cost
					bestPt = cand
				}
			}
		}
		if bestCost < 0 || bestCost >= t.cfg.MaxSSD {
			dropped++
			continue
		}
		out = append(out, Correspondence{Prev: feat, Curr: bestPt, Cost: bestCost})
	}
	if dropped > 0 {
		t.logger.Debugw("dropped features with no acceptable match", "dropped", dropped)
	}
	return out
}

// inSearchableArea reports whether a candidate location is inside the frame
// minus the border margin.
func (t *Tracker) inSearchableArea(fr *frame.Frame, pt image.Point) bool {
	m := t.cfg.BorderMargin
	return pt.X >= m && pt.Y >= m && pt.X < fr.Width()-m && pt.Y < fr.Height()-m
}
