// Package odometry orchestrates the visual pipeline: per frame it extracts
// features, tracks them against the previous frame, estimates a pose delta,
// integrates it into the running pose and trajectory, and updates the
// landmark map. Cycles never overlap: one runs to completion before the next
// is scheduled, so all per-cycle state has a single writer by construction.
package odometry

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/visualodometry/features"
	"go.viam.com/visualodometry/frame"
	"go.viam.com/visualodometry/landmarks"
	"go.viam.com/visualodometry/motion"
	"go.viam.com/visualodometry/tracking"
)

// CycleResult reports what one pipeline cycle did, for display and
// performance monitoring.
type CycleResult struct {
	Delta           motion.Delta
	FeatureCount    int
	Correspondences int
	MeanCost        float64
	Degraded        bool
	Duration        time.Duration
}

// previousState is the pipeline's two-frame memory: the prior frame and its
// features, present only while tracking, absent at idle and after reset.
type previousState struct {
	frame *frame.Frame
	feats []features.Feature
}

// Pipeline owns the running pose, trajectory, and landmark map, and advances
// them one delivered frame at a time.
type Pipeline struct {
	cfg       Config
	source    FrameSource
	detector  *features.Detector
	tracker   *tracking.Tracker
	estimator *motion.Estimator
	logger    golog.Logger
	clock     clock.Clock

	mu           sync.Mutex
	pose         Pose
	traj         *trajectory
	landmarkMap  *landmarks.Map
	prev         *previousState
	lastFeatures []features.Feature
	lastCycle    *CycleResult

	running                 bool
	cancel                  func()
	activeBackgroundWorkers sync.WaitGroup
}

// NewPipeline validates the configuration and returns an idle pipeline.
// Construction is the only fatal failure point; per-cycle conditions degrade
// locally instead.
func NewPipeline(cfg Config, source FrameSource, logger golog.Logger) (*Pipeline, error) {
	if source == nil {
		return nil, errors.New("frame source is required")
	}
	if err := cfg.Validate("pipeline"); err != nil {
		return nil, err
	}
	detector, err := features.NewDetector(cfg.Detector, logger)
	if err != nil {
		return nil, err
	}
	tracker, err := tracking.NewTracker(cfg.Tracker, logger)
	if err != nil {
		return nil, err
	}
	estimator, err := motion.NewEstimator(cfg.Estimator, logger)
	if err != nil {
		return nil, err
	}
	landmarkMap, err := landmarks.NewMap(cfg.Landmarks, logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:         cfg,
		source:      source,
		detector:    detector,
		tracker:     tracker,
		estimator:   estimator,
		landmarkMap: landmarkMap,
		logger:      logger,
		clock:       clock.New(),
		traj:        newTrajectory(cfg.TrajectoryMaxLength),
	}, nil
}

// ProcessNextFrame pulls one frame from the source and runs one cycle
// synchronously. A (nil, nil) return means the source had no frame; that is
// not an error, the pipeline just did not advance.
func (p *Pipeline) ProcessNextFrame(ctx context.Context) (*CycleResult, error) {
	fr, err := p.source.NextFrame(ctx)
	if err != nil {
		return nil, err
	}
	if fr == nil {
		return nil, nil
	}
	res := p.cycle(fr)
	return &res, nil
}

// cycle runs one full pipeline cycle. It holds the state lock throughout so
// Reset and readers only ever see between-cycle state.
func (p *Pipeline) cycle(fr *frame.Frame) CycleResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.clock.Now()
	feats := p.detector.Detect(fr)
	res := CycleResult{FeatureCount: len(feats)}

	if p.prev == nil {
		// idle to tracking: store state, no delta this cycle
		p.prev = &previousState{frame: fr, feats: feats}
		p.lastFeatures = feats
		res.Duration = p.clock.Since(start)
		p.lastCycle = &res
		return res
	}

	matches := p.tracker.Track(p.prev.frame, p.prev.feats, fr)
	delta := p.estimator.Estimate(matches)
	res.Correspondences = len(matches)
	res.MeanCost = meanCost(matches)
	res.Delta = delta
	res.Degraded = len(matches) < p.cfg.Estimator.MinCorrespondences
	if res.Degraded {
		p.logger.Debugw("degraded cycle: too few correspondences",
			"matches", len(matches), "needed", p.cfg.Estimator.MinCorrespondences)
	}

	p.pose.X += delta.DX
	p.pose.Y += delta.DY
	p.pose.Heading = motion.NormalizeAngle(p.pose.Heading + delta.DHeading)
	p.traj.append(r2.Point{X: p.pose.X, Y: p.pose.Y})
	p.landmarkMap.Observe(feats, p.pose.X, p.pose.Y, p.pose.Heading)

	p.prev = &previousState{frame: fr, feats: feats}
	p.lastFeatures = feats
	res.Duration = p.clock.Since(start)
	p.lastCycle = &res
	return res
}

func meanCost(matches []tracking.Correspondence) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Cost
	}
	return sum / float64(len(matches))
}

// Start launches the frame loop. Cycles are scheduled at most once per
// delivered frame; a slow cycle delays the next, never overlaps it.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("pipeline already running")
	}
	cancelCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.mu.Unlock()

	idleWait := time.Duration(p.cfg.IdleWaitMillis) * time.Millisecond
	p.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		for {
			if cancelCtx.Err() != nil {
				return
			}
			res, err := p.ProcessNextFrame(cancelCtx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				p.logger.Errorw("frame source error", "error", err)
				if !goutils.SelectContextOrWait(cancelCtx, idleWait) {
					return
				}
				continue
			}
			if res == nil {
				// input unavailable; the pipeline stops advancing, not a fault
				if !goutils.SelectContextOrWait(cancelCtx, idleWait) {
					return
				}
			}
		}
	}, p.activeBackgroundWorkers.Done)
	return nil
}

// Stop prevents scheduling of the next cycle and waits for any in-flight
// cycle to finish.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.running = false
	p.mu.Unlock()
	p.activeBackgroundWorkers.Wait()
}

// Close stops the pipeline and closes the frame source if it is closeable.
func (p *Pipeline) Close() error {
	p.Stop()
	var err error
	if closer, ok := p.source.(io.Closer); ok {
		err = multierr.Combine(err, closer.Close())
	}
	return err
}

// Reset returns the pose to the origin, the trajectory to a single origin
// point, the landmark set to empty, and drops the previous-frame state, so
// the next cycle behaves like the first. It is serialized with cycles and so
// only ever applies between them.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pose = Pose{}
	p.traj.reset()
	p.landmarkMap.Clear()
	p.prev = nil
	p.lastFeatures = nil
	p.lastCycle = nil
}

// Pose returns the current pose.
func (p *Pipeline) Pose() Pose {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pose
}

// Trajectory returns a read-only snapshot of the trajectory.
func (p *Pipeline) Trajectory() []r2.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.traj.snapshot()
}

// LandmarkCount returns the number of landmarks in the map.
func (p *Pipeline) LandmarkCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.landmarkMap.Len()
}

// Landmarks returns a copy of the landmark set, for overlay rendering.
func (p *Pipeline) Landmarks() []landmarks.Landmark {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.landmarkMap.Landmarks()
}

// LastFeatures returns the most recent feature list, for overlay rendering.
func (p *Pipeline) LastFeatures() []features.Feature {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]features.Feature, len(p.lastFeatures))
	copy(out, p.lastFeatures)
	return out
}

// LastCycle returns the most recent cycle result and whether a cycle has run
// since construction or the last reset.
func (p *Pipeline) LastCycle() (CycleResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastCycle == nil {
		return CycleResult{}, false
	}
	return *p.lastCycle, true
}
