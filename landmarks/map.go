// Package landmarks maintains the sparse world-coordinate landmark map.
// Newly detected features are projected into the world frame and associated
// with existing landmarks by nearest-neighbor search; re-observed landmarks
// are refined by quality-weighted averaging and never deleted.
package landmarks

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/visualodometry/features"
)

// Landmark is a persistent estimate of a physical feature's world position.
// Quality grows with repeated observation, bounded by MaxQuality.
type Landmark struct {
	ID      int64
	Pos     r2.Point
	Quality int
}

// MapConfig contains the parameters for landmark projection and association.
type MapConfig struct {
	// MatchDistanceM is the world-frame radius within which an observation
	// fuses into an existing landmark instead of creating a new one.
	MatchDistanceM float64 `json:"match_distance_m"`
	MaxLandmarks   int     `json:"max_landmarks"`
	MaxQuality     int     `json:"max_quality"`
	// MetersPerPixel and the optical center define the projection of pixel
	// offsets into the world frame.
	MetersPerPixel float64 `json:"meters_per_pixel"`
	OpticalCenterX float64 `json:"optical_center_x"`
	OpticalCenterY float64 `json:"optical_center_y"`
}

// DefaultMapConfig returns the tuned landmark parameters for a frame of the
// given resolution.
func DefaultMapConfig(width, height int) MapConfig {
	return MapConfig{
		MatchDistanceM: 0.5,
		MaxLandmarks:   500,
		MaxQuality:     10,
		MetersPerPixel: 0.01,
		OpticalCenterX: float64(width) / 2,
		OpticalCenterY: float64(height) / 2,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *MapConfig) Validate(path string) error {
	if cfg.MatchDistanceM <= 0 {
		return utils.NewConfigValidationError(path, errors.New("match_distance_m must be positive"))
	}
	if cfg.MaxLandmarks <= 0 {
		return utils.NewConfigValidationError(path, errors.New("max_landmarks must be positive"))
	}
	if cfg.MaxQuality < 1 {
		return utils.NewConfigValidationError(path, errors.New("max_quality must be at least 1"))
	}
	if cfg.MetersPerPixel <= 0 {
		return utils.NewConfigValidationError(path, errors.New("meters_per_pixel must be positive"))
	}
	if cfg.OpticalCenterX < 0 || cfg.OpticalCenterY < 0 {
		return utils.NewConfigValidationError(path, errors.New("optical center must be non-negative"))
	}
	return nil
}

// Map is an incremental landmark store. It is owned by a single pipeline
// instance and is not safe for concurrent use.
type Map struct {
	cfg       MapConfig
	logger    golog.Logger
	landmarks []Landmark
	nextID    int64
}

// NewMap validates the config and returns an empty map.
func NewMap(cfg MapConfig, logger golog.Logger) (*Map, error) {
	if err := cfg.Validate("landmarks"); err != nil {
		return nil, err
	}
	return &Map{cfg: cfg, logger: logger}, nil
}

// Observe projects the features into world coordinates using the given pose
// and fuses them into the map. Observations beyond the size cap are silently
// not admitted; existing landmarks keep updating.
func (m *Map) Observe(feats []features.Feature, x, y, heading float64) {
	skipped := 0
	for _, f := range feats {
		obs := m.project(f, x, y, heading)
		if idx := m.nearestWithin(obs, m.cfg.MatchDistanceM); idx >= 0 {
			m.fuse(idx, obs)
			continue
		}
		if len(m.landmarks) >= m.cfg.MaxLandmarks {
			skipped++
			continue
		}
		m.landmarks = append(m.landmarks, Landmark{ID: m.nextID, Pos: obs, Quality: 1})
		m.nextID++
	}
	if skipped > 0 {
		m.logger.Debugw("landmark capacity reached", "skipped", skipped, "cap", m.cfg.MaxLandmarks)
	}
}

// project maps a pixel feature into the world frame: the offset from the
// optical center is rotated by the heading, scaled to meters, and added to
// the pose position.
func (m *Map) project(f features.Feature, x, y, heading float64) r2.Point {
	ox := (float64(f.Point.X) - m.cfg.OpticalCenterX) * m.cfg.MetersPerPixel
	oy := (float64(f.Point.Y) - m.cfg.OpticalCenterY) * m.cfg.MetersPerPixel
	sin, cos := math.Sincos(heading)
	return r2.Point{
		X: x + ox*cos - oy*sin,
		Y: y + ox*sin + oy*cos,
	}
}

// nearestWithin returns the index of the closest landmark within radius, or
// -1 if none qualifies. Linear scan; the map is capped small.
func (m *Map) nearestWithin(obs r2.Point, radius float64) int {
	best := -1
	bestDist := radius
	for i, lm := range m.landmarks {
		d := lm.Pos.Sub(obs).Norm()
		if d <= bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// fuse refines a landmark with a new observation: position moves to the
// quality-weighted mean and quality increments up to the cap.
func (m *Map) fuse(idx int, obs r2.Point) {
	lm := &m.landmarks[idx]
	w := float64(lm.Quality)
	lm.Pos = r2.Point{
		X: (lm.Pos.X*w + obs.X) / (w + 1),
		Y: (lm.Pos.Y*w + obs.Y) / (w + 1),
	}
	if lm.Quality < m.cfg.MaxQuality {
		lm.Quality++
	}
}

// Len returns the number of landmarks in the map.
func (m *Map) Len() int {
	return len(m.landmarks)
}

// Landmarks returns a copy of the landmark set.
func (m *Map) Landmarks() []Landmark {
	out := make([]Landmark, len(m.landmarks))
	copy(out, m.landmarks)
	return out
}

// Clear empties the map. Landmark ids keep growing so ids stay unique across
// resets within one map instance.
func (m *Map) Clear() {
	m.landmarks = m.landmarks[:0]
}
