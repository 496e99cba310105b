// Package features implements per-frame corner extraction with
// obstacle/environment classification, plus the intensity-patch descriptor
// used by the tracker. Detection compares each sampled pixel against a fixed
// circular ring of 16 offsets; survivors of grid non-maximum suppression are
// classified by spatial cluster density and optional depth.
package features

import (
	"image"

	"github.com/edaniels/golog"

	"go.viam.com/visualodometry/frame"
)

// Classification labels a detected corner as part of a foreground obstacle or
// background environment texture. Only obstacle features leave the detector.
type Classification int

const (
	// ClassEnvironment marks background texture; discarded after detection.
	ClassEnvironment Classification = iota
	// ClassObstacle marks foreground structure worth tracking.
	ClassObstacle
)

// Feature is a single detected corner. Features are immutable once produced
// and live for one pipeline cycle.
type Feature struct {
	Point    image.Point
	Strength int
	Brighter int
	Darker   int
	Depth    float64
	HasDepth bool
	Class    Classification
}

// ringRadius is the radius of the circular comparison ring below.
const ringRadius = 3

// ringOffsets is the fixed 16-point circular offset ring, radius 3,
// clockwise from twelve o'clock.
var ringOffsets = [16]image.Point{
	{0, -3}, {1, -3}, {2, -2}, {3, -1},
	{3, 0}, {3, 1}, {2, 2}, {1, 3},
	{0, 3}, {-1, 3}, {-2, 2}, {-3, 1},
	{-3, 0}, {-3, -1}, {-2, -2}, {-1, -3},
}

// Detector extracts obstacle-classified corner features from frames.
type Detector struct {
	cfg    DetectorConfig
	logger golog.Logger
}

// NewDetector validates the config and returns a detector.
func NewDetector(cfg DetectorConfig, logger golog.Logger) (*Detector, error) {
	if err := cfg.Validate("detector"); err != nil {
		return nil, err
	}
	return &Detector{cfg: cfg, logger: logger}, nil
}

// Detect returns the obstacle-classified features of the frame, in detection
// order, capped at MaxFeatures. An empty frame yields an empty list.
func (d *Detector) Detect(fr *frame.Frame) []Feature {
	return d.classify(fr, d.DetectRaw(fr))
}

// DetectRaw returns all corner candidates that survive non-maximum
// suppression, before classification. Useful for overlay debugging.
func (d *Detector) DetectRaw(fr *frame.Frame) []Feature {
	return d.suppress(d.detectCorners(fr))
}

// detectCorners scans the frame on the configured stride and records every
// sample where at least MinRingMatches ring points are strictly brighter or
// strictly darker than the center by the intensity threshold.
func (d *Detector) detectCorners(fr *frame.Frame) []Feature {
	margin := d.cfg.BorderMargin
	thresh := d.cfg.IntensityThreshold
	w, h := fr.Width(), fr.Height()

	var out []Feature
	for y := margin; y < h-margin; y += d.cfg.Stride {
		for x := margin; x < w-margin; x += d.cfg.Stride {
			center := int(fr.Intensity(x, y))
			brighter, darker := 0, 0
			for _, off := range ringOffsets {
				v := int(fr.Intensity(x+off.X, y+off.Y))
				switch {
				case v > center+thresh:
					brighter++
				case v < center-thresh:
					darker++
				}
			}
			if brighter < d.cfg.MinRingMatches && darker < d.cfg.MinRingMatches {
				continue
			}
			strength := brighter
			if darker > strength {
				strength = darker
			}
			feat := Feature{
				Point:    image.Point{x, y},
				Strength: strength,
				Brighter: brighter,
				Darker:   darker,
			}
			if depth, ok := fr.Depth(x, y); ok {
				feat.Depth = depth
				feat.HasDepth = true
			}
			out = append(out, feat)
		}
	}
	return out
}

// suppress buckets candidates into a coarse grid and keeps the strongest per
// cell, preserving detection order. Earlier candidates win ties.
func (d *Detector) suppress(candidates []Feature) []Feature {
	cell := d.cfg.NMSCellSize
	best := make(map[image.Point]int, len(candidates))
	for i, c := range candidates {
		key := image.Point{c.Point.X / cell, c.Point.Y / cell}
		if j, ok := best[key]; !ok || c.Strength > candidates[j].Strength {
			best[key] = i
		}
	}
	out := make([]Feature, 0, len(best))
	for i, c := range candidates {
		key := image.Point{c.Point.X / cell, c.Point.Y / cell}
		if best[key] == i {
			out = append(out, c)
		}
	}
	return out
}
