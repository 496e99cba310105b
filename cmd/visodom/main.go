// Package main runs the visual odometry pipeline against a synthetic moving
// scene and logs the estimated pose, for eyeballing pipeline behavior
// without a camera attached.
package main

import (
	"context"

	"github.com/edaniels/golog"
	"go.viam.com/utils"

	"go.viam.com/visualodometry/frame"
	"go.viam.com/visualodometry/odometry"
)

var logger = golog.NewDebugLogger("visodom")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	Frames  int `flag:"frames,default=120,usage=number of synthetic frames to process"`
	Width   int `flag:"width,default=640,usage=frame width in pixels"`
	Height  int `flag:"height,default=480,usage=frame height in pixels"`
	ShiftPx int `flag:"shift,default=1,usage=horizontal scene shift per frame in pixels"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	src := &syntheticSource{
		width:   argsParsed.Width,
		height:  argsParsed.Height,
		shiftPx: argsParsed.ShiftPx,
		total:   argsParsed.Frames,
	}
	pipeline, err := odometry.NewPipeline(
		odometry.DefaultConfig(argsParsed.Width, argsParsed.Height), src, logger)
	if err != nil {
		return err
	}
	defer func() {
		utils.UncheckedErrorFunc(pipeline.Close)
	}()

	cycles := 0
	for {
		if ctx.Err() != nil {
			break
		}
		res, err := pipeline.ProcessNextFrame(ctx)
		if err != nil {
			return err
		}
		if res == nil {
			break
		}
		cycles++
		if cycles%10 == 0 {
			pose := pipeline.Pose()
			logger.Infow("cycle",
				"n", cycles,
				"x", pose.X,
				"y", pose.Y,
				"heading", pose.Heading,
				"features", res.FeatureCount,
				"matches", res.Correspondences,
				"degraded", res.Degraded,
				"took", res.Duration,
			)
		}
	}

	pose := pipeline.Pose()
	logger.Infow("done",
		"cycles", cycles,
		"x", pose.X,
		"y", pose.Y,
		"heading", pose.Heading,
		"landmarks", pipeline.LandmarkCount(),
		"trajectory_points", len(pipeline.Trajectory()),
	)
	return nil
}

// syntheticSource produces frames of small bright dots drifting horizontally,
// the cheapest scene the detector reliably locks onto.
type syntheticSource struct {
	width    int
	height   int
	shiftPx  int
	total    int
	produced int
}

func (s *syntheticSource) NextFrame(ctx context.Context) (*frame.Frame, error) {
	if s.produced >= s.total {
		return nil, nil
	}
	fr, err := frame.New(s.width, s.height)
	if err != nil {
		return nil, err
	}
	shift := s.produced * s.shiftPx
	span := s.width - 80
	for gy := 40; gy < s.height-40; gy += 60 {
		for gx := 40; gx < s.width-40; gx += 60 {
			cx := 40 + (gx-40+shift)%span
			for oy := -1; oy <= 1; oy++ {
				for ox := -1; ox <= 1; ox++ {
					fr.SetIntensity(cx+ox, gy+oy, 255)
				}
			}
		}
	}
	s.produced++
	return fr, nil
}
