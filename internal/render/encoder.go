package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/btinference/internal/config"
	"github.com/banshee-data/btinference/internal/fsutil"
)

// ErrEncode is returned when the output could not be encoded or written.
var ErrEncode = errors.New("encode animation")

// Encoder consumes rendered frames in order. Close finalises the output and
// must be called exactly once, including after a failed WriteFrame.
type Encoder interface {
	WriteFrame(img image.Image) error
	Close() error
}

// NewEncoder picks an encoder from the output extension: ".gif" is encoded
// in-process, everything else is handed to ffmpeg.
func NewEncoder(fsys fsutil.FileSystem, out string, cfg *config.RenderConfig) (Encoder, error) {
	if strings.EqualFold(filepath.Ext(out), ".gif") {
		return NewGIFEncoder(fsys, out, cfg.GetFrameRate())
	}
	return NewFFmpegEncoder(cfg.GetFFmpegPath(), out, cfg.GetFrameRate())
}

// FFmpegEncoder pipes PNG frames into an ffmpeg process writing an H.264 file.
type FFmpegEncoder struct {
	out    string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
}

// NewFFmpegEncoder starts ffmpeg. An existing file at out is overwritten.
func NewFFmpegEncoder(bin, out string, fps float64) (*FFmpegEncoder, error) {
	rate := strconv.FormatFloat(fps, 'f', -1, 64)
	e := &FFmpegEncoder{out: out}
	e.cmd = exec.Command(bin,
		"-y", "-loglevel", "error",
		"-f", "image2pipe", "-framerate", rate, "-c:v", "png", "-i", "-",
		// yuv420p needs even dimensions.
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-r", rate,
		out,
	)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, out, err)
	}
	e.stdin = stdin
	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", ErrEncode, bin, err)
	}
	return e, nil
}

// WriteFrame sends one frame to ffmpeg.
func (e *FFmpegEncoder) WriteFrame(img image.Image) error {
	if err := png.Encode(e.stdin, img); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, e.out, err)
	}
	return nil
}

// Close flushes the pipe and waits for ffmpeg to finish.
func (e *FFmpegEncoder) Close() error {
	closeErr := e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("%w: ffmpeg writing %s: %v: %s", ErrEncode, e.out, err, strings.TrimSpace(e.stderr.String()))
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, e.out, closeErr)
	}
	return nil
}

// GIFEncoder collects frames into an animated GIF written on Close.
type GIFEncoder struct {
	out   string
	w     io.WriteCloser
	delay int
	anim  gif.GIF
}

// NewGIFEncoder creates (or truncates) out.
func NewGIFEncoder(fsys fsutil.FileSystem, out string, fps float64) (*GIFEncoder, error) {
	w, err := fsys.Create(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, out, err)
	}
	// GIF delays are in hundredths of a second.
	delay := int(math.Max(1, math.Round(100/fps)))
	return &GIFEncoder{out: out, w: w, delay: delay, anim: gif.GIF{LoopCount: -1}}, nil
}

// WriteFrame quantises img to the Plan 9 palette with dithering.
func (e *GIFEncoder) WriteFrame(img image.Image) error {
	b := img.Bounds()
	frame := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(frame, b, img, b.Min)
	e.anim.Image = append(e.anim.Image, frame)
	e.anim.Delay = append(e.anim.Delay, e.delay)
	return nil
}

// Close encodes the collected frames and closes the file.
func (e *GIFEncoder) Close() error {
	// EncodeAll rejects an animation without frames.
	encErr := gif.EncodeAll(e.w, &e.anim)
	closeErr := e.w.Close()
	if err := errors.Join(encErr, closeErr); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, e.out, err)
	}
	return nil
}

// Frames returns the number of frames collected so far.
func (e *GIFEncoder) Frames() int {
	return len(e.anim.Image)
}
