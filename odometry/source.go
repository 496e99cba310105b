package odometry

import (
	"context"

	"go.viam.com/visualodometry/frame"
)

// FrameSource delivers grayscale frames to the pipeline. NextFrame is called
// at most once per cycle. Returning (nil, nil) means no frame is available
// this cycle; the pipeline simply does not run a cycle and tries again later.
// If the source also implements io.Closer, the pipeline closes it on Close.
type FrameSource interface {
	NextFrame(ctx context.Context) (*frame.Frame, error)
}
