package features

import (
	"image"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/visualodometry/frame"
)

// clusterStats summarizes the spatial clustering of corner candidates for one
// frame. Densities are candidate counts per cluster cell.
type clusterStats struct {
	densityAt map[image.Point]float64
	average   float64
	median    float64
	dynamic   float64
}

// guardInput is everything a classification guard may consult for one
// candidate.
type guardInput struct {
	feat    Feature
	density float64
	scene   clusterStats
	width   int
	height  int
}

// classificationGuard is one named obstacle predicate. The guards below are
// independent and combined by OR, checked in order.
type classificationGuard struct {
	name  string
	holds func(cfg *DetectorConfig, in guardInput) bool
}

var obstacleGuards = []classificationGuard{
	{"near_depth", func(cfg *DetectorConfig, in guardInput) bool {
		return in.feat.HasDepth && in.feat.Depth < cfg.NearDepthM
	}},
	{"mid_depth_cluster", func(cfg *DetectorConfig, in guardInput) bool {
		return in.feat.HasDepth &&
			in.feat.Depth > cfg.MidDepthMinM && in.feat.Depth < cfg.MidDepthMaxM &&
			in.density >= cfg.MidDepthMinDensity
	}},
	{"dense_dynamic", func(cfg *DetectorConfig, in guardInput) bool {
		return in.density >= in.scene.dynamic*cfg.DynamicDensityBoost
	}},
	{"balanced_strong", func(cfg *DetectorConfig, in guardInput) bool {
		diff := in.feat.Brighter - in.feat.Darker
		if diff < 0 {
			diff = -diff
		}
		return in.feat.Strength >= cfg.BalancedStrengthMin && diff <= cfg.BalancedMaxDiff
	}},
	{"central_cluster", func(cfg *DetectorConfig, in guardInput) bool {
		fx := float64(in.feat.Point.X) / float64(in.width)
		fy := float64(in.feat.Point.Y) / float64(in.height)
		if fx < cfg.CentralXMin || fx > cfg.CentralXMax || fy < cfg.CentralYMin || fy > cfg.CentralYMax {
			return false
		}
		return in.density >= in.scene.median*cfg.CentralClusterRatio
	}},
	{"strong_corner", func(cfg *DetectorConfig, in guardInput) bool {
		return in.feat.Strength >= cfg.StrongStrengthMin
	}},
	{"dominant_cluster", func(cfg *DetectorConfig, in guardInput) bool {
		return in.density > in.scene.median*cfg.DominantClusterRatio
	}},
}

// classify labels every candidate and keeps the obstacles, preserving
// detection order, capped at MaxFeatures.
func (d *Detector) classify(fr *frame.Frame, candidates []Feature) []Feature {
	scene := d.clusterize(candidates)
	out := make([]Feature, 0, len(candidates))
	for _, c := range candidates {
		in := guardInput{
			feat:    c,
			density: scene.densityAt[d.clusterCell(c.Point)],
			scene:   scene,
			width:   fr.Width(),
			height:  fr.Height(),
		}
		obstacle := false
		for _, g := range obstacleGuards {
			if g.holds(&d.cfg, in) {
				obstacle = true
				break
			}
		}
		if !obstacle {
			continue
		}
		c.Class = ClassObstacle
		out = append(out, c)
		if len(out) == d.cfg.MaxFeatures {
			d.logger.Debugw("feature cap reached", "cap", d.cfg.MaxFeatures)
			break
		}
	}
	return out
}

func (d *Detector) clusterCell(pt image.Point) image.Point {
	return image.Point{pt.X / d.cfg.ClusterCellSize, pt.Y / d.cfg.ClusterCellSize}
}

// clusterize groups candidates into coarse spatial cells and derives the
// scene-wide density statistics the guards compare against. With zero
// clusters the denominators default to 1 so the statistics stay finite.
func (d *Detector) clusterize(candidates []Feature) clusterStats {
	densityAt := make(map[image.Point]float64)
	for _, c := range candidates {
		densityAt[d.clusterCell(c.Point)]++
	}
	densities := make([]float64, 0, len(densityAt))
	for _, v := range densityAt {
		densities = append(densities, v)
	}
	n := float64(len(densities))
	if n == 0 {
		n = 1
	}
	avg := floats.Sum(densities) / n
	median, err := stats.Median(densities)
	if err != nil {
		median = 0
	}
	return clusterStats{
		densityAt: densityAt,
		average:   avg,
		median:    median,
		dynamic:   math.Max(d.cfg.MinDensityThreshold, avg*d.cfg.DensityMultiplier),
	}
}
