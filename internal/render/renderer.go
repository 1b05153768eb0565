package render

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/banshee-data/btinference/internal/config"
	"github.com/banshee-data/btinference/internal/fsutil"
	"github.com/banshee-data/btinference/internal/monitoring"
	"github.com/banshee-data/btinference/internal/timeutil"
)

// Renderer draws every frame of an Animation and feeds it to an Encoder.
type Renderer struct {
	cfg   *config.RenderConfig
	clock timeutil.Clock
	logf  func(format string, v ...interface{})
	draw  func(Frame, *config.RenderConfig) (image.Image, error)
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithClock sets the clock used for progress reporting.
func WithClock(c timeutil.Clock) RendererOption {
	return func(r *Renderer) { r.clock = c }
}

// WithLogger sets the progress logger. The default is monitoring.Logf.
func WithLogger(logf func(format string, v ...interface{})) RendererOption {
	return func(r *Renderer) { r.logf = logf }
}

// NewRenderer returns a Renderer using cfg, or the defaults when cfg is nil.
func NewRenderer(cfg *config.RenderConfig, opts ...RendererOption) *Renderer {
	if cfg == nil {
		cfg = config.DefaultRenderConfig()
	}
	r := &Renderer{
		cfg:   cfg,
		clock: timeutil.RealClock{},
		logf:  func(format string, v ...interface{}) { monitoring.Logf(format, v...) },
		draw:  DrawFrame,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes a.FrameCount() frames to enc and closes it. enc is closed on
// every path; a failure to close is reported even after a successful run. An
// animation without frames fails with ErrNoFrames.
func (r *Renderer) Render(a *Animation, enc Encoder) (err error) {
	defer func() {
		if cerr := enc.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if err := a.checkFrames(); err != nil {
		return err
	}
	n := a.FrameCount()
	start := r.clock.Now()
	every := int(r.cfg.GetFrameRate() * 10)
	if every < 1 {
		every = 1
	}

	for i := 0; i < n; i++ {
		f, err := a.Frame(i)
		if err != nil {
			return err
		}
		img, err := r.draw(f, r.cfg)
		if err != nil {
			return fmt.Errorf("draw frame %d: %w", i, err)
		}
		if err := enc.WriteFrame(img); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if (i+1)%every == 0 {
			r.logf("rendered %d/%d frames in %s", i+1, n, r.clock.Since(start))
		}
	}
	r.logf("rendered %d frames (%.1f s of simulated time) in %s", n, float64(n)/r.cfg.GetFrameRate(), r.clock.Since(start))
	return nil
}

// RenderFile renders a into out, picking the encoder from its extension.
// The parent directory is created if needed. Nothing is written when the
// animation has no frames.
func (r *Renderer) RenderFile(fsys fsutil.FileSystem, a *Animation, out string) error {
	if err := a.checkFrames(); err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}
	if err := fsys.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("%w: create output dir for %s: %v", ErrEncode, out, err)
	}
	enc, err := NewEncoder(fsys, out, r.cfg)
	if err != nil {
		return err
	}
	return r.Render(a, enc)
}
