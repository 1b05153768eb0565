// Package render draws the inferred path and the per-camera sightlines as an
// animation. Animation is the pure frame model; Renderer draws its frames with
// gonum/plot and hands them to an Encoder.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/btinference/internal/config"
	"github.com/banshee-data/btinference/internal/inference"
	"github.com/banshee-data/btinference/internal/observation"
	"github.com/golang/geo/r2"
)

var (
	// ErrNoObservations is returned when there is nothing to animate.
	ErrNoObservations = errors.New("no observations to animate")
	// ErrNoEstimates is returned when the track is empty.
	ErrNoEstimates = errors.New("no position estimates to animate")
	// ErrNoFrames is returned when the observations span less than one frame.
	ErrNoFrames = errors.New("observations span less than one frame")
)

// ellipseSegments is the number of vertices used for the uncertainty ellipse
// and the camera markers.
const ellipseSegments = 64

// Ray is one sightline drawn in a frame, projected onto the x/y plane.
type Ray struct {
	// Index is the observation's position in the store.
	Index int
	// Time is the observation time.
	Time float64
	// Alpha is the opacity in (0, 1].
	Alpha float64
	// From is the camera location; To is RayLength along the direction.
	From r2.Point
	To   r2.Point
}

// Frame is everything drawn at one simulated instant.
type Frame struct {
	Index int
	Time  float64
	Rays  []Ray
	// Estimate is the index of the nearest position estimate.
	Estimate int
	Mean     r2.Point
	Ellipse  []r2.Point
}

// Animation maps frame numbers to simulated time and works out what each frame
// shows. Simulated time starts at the earliest observation and advances by
// 1/frame_rate per frame.
type Animation struct {
	store *observation.Store
	track *inference.Track
	cfg   *config.RenderConfig
	start float64
	end   float64
}

// NewAnimation validates its inputs. cfg may be nil for the defaults.
func NewAnimation(store *observation.Store, track *inference.Track, cfg *config.RenderConfig) (*Animation, error) {
	if cfg == nil {
		cfg = config.DefaultRenderConfig()
	}
	start, end, ok := store.TimeRange()
	if !ok {
		return nil, ErrNoObservations
	}
	if track == nil || track.Len() == 0 {
		return nil, ErrNoEstimates
	}
	return &Animation{store: store, track: track, cfg: cfg, start: start, end: end}, nil
}

// FrameCount is frame_rate × (last − first observation time), truncated.
func (a *Animation) FrameCount() int {
	return int(a.cfg.GetFrameRate() * (a.end - a.start))
}

// checkFrames reports ErrNoFrames, naming the observation span, when there is
// nothing to draw.
func (a *Animation) checkFrames() error {
	if a.FrameCount() > 0 {
		return nil
	}
	return fmt.Errorf("%w: %.6f s to %.6f s at %g frames/s", ErrNoFrames, a.start, a.end, a.cfg.GetFrameRate())
}

// SimTime returns the simulated time of frame i.
func (a *Animation) SimTime(i int) float64 {
	return float64(i)/a.cfg.GetFrameRate() + a.start
}

// Alpha is the opacity of an observation taken at obsTime in a frame at
// simTime. Non-positive values mean the observation is not drawn.
func Alpha(obsTime, simTime, fadeRate float64) float64 {
	return 1 - fadeRate*math.Abs(obsTime-simTime)
}

// Frame computes frame i.
func (a *Animation) Frame(i int) (Frame, error) {
	t := a.SimTime(i)
	f := Frame{Index: i, Time: t}

	fade := a.cfg.GetFadeRate()
	length := a.cfg.GetRayLength()
	for j := 0; j < a.store.Len(); j++ {
		o := a.store.At(j)
		alpha := Alpha(o.Time, t, fade)
		if alpha <= 0 {
			continue
		}
		end := o.PointAt(length)
		f.Rays = append(f.Rays, Ray{
			Index: j,
			Time:  o.Time,
			Alpha: alpha,
			From:  r2.Point{X: o.Vector[0], Y: o.Vector[1]},
			To:    r2.Point{X: end.X, Y: end.Y},
		})
	}

	f.Estimate = a.track.Nearest(t)
	f.Mean = a.track.Mean2D(f.Estimate)
	ellipse, err := Ellipse(f.Mean, a.track.Cov2D(f.Estimate), a.cfg.GetEllipseNStd(), ellipseSegments)
	if err != nil {
		return Frame{}, fmt.Errorf("frame %d estimate %d: %w", i, f.Estimate, err)
	}
	f.Ellipse = ellipse
	return f, nil
}
