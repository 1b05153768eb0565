package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/btinference/internal/fsutil"
)

// RenderConfig holds the animation settings. Every field is optional; the Get*
// methods supply the defaults, which reproduce the reference figure: a 5x5
// inch plot of x in [-1, 10] and y in [-5, 5] at 10 frames per second, with
// sightlines fading out 1/3 s away from the frame time.
type RenderConfig struct {
	FrameRate *float64 `json:"frame_rate,omitempty"`
	FadeRate  *float64 `json:"fade_rate,omitempty"` // opacity lost per second of |obs - frame| time

	FigureWidthIn  *float64 `json:"figure_width_in,omitempty"`
	FigureHeightIn *float64 `json:"figure_height_in,omitempty"`
	DPI            *float64 `json:"dpi,omitempty"`

	XMin *float64 `json:"x_min,omitempty"`
	XMax *float64 `json:"x_max,omitempty"`
	YMin *float64 `json:"y_min,omitempty"`
	YMax *float64 `json:"y_max,omitempty"`

	RayLength    *float64 `json:"ray_length,omitempty"`
	MarkerRadius *float64 `json:"marker_radius,omitempty"`
	EllipseNStd  *float64 `json:"ellipse_n_std,omitempty"`

	FFmpegPath *string `json:"ffmpeg_path,omitempty"`
}

// DefaultRenderConfig returns a config with every field unset.
func DefaultRenderConfig() *RenderConfig {
	return &RenderConfig{}
}

// LoadRenderConfig loads a RenderConfig from a JSON file on fsys.
// The file must have a .json extension and be under 1MB. Omitted fields keep
// their defaults.
func LoadRenderConfig(fsys fsutil.FileSystem, path string) (*RenderConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", len(data), maxFileSize)
	}

	cfg := DefaultRenderConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *RenderConfig) Validate() error {
	positive := map[string]*float64{
		"frame_rate":       c.FrameRate,
		"fade_rate":        c.FadeRate,
		"figure_width_in":  c.FigureWidthIn,
		"figure_height_in": c.FigureHeightIn,
		"dpi":              c.DPI,
		"ray_length":       c.RayLength,
		"marker_radius":    c.MarkerRadius,
		"ellipse_n_std":    c.EllipseNStd,
	}
	for name, v := range positive {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, *v)
		}
	}

	if c.GetXMin() >= c.GetXMax() {
		return fmt.Errorf("x_min (%g) must be less than x_max (%g)", c.GetXMin(), c.GetXMax())
	}
	if c.GetYMin() >= c.GetYMax() {
		return fmt.Errorf("y_min (%g) must be less than y_max (%g)", c.GetYMin(), c.GetYMax())
	}

	if c.FFmpegPath != nil && *c.FFmpegPath == "" {
		return fmt.Errorf("ffmpeg_path must not be empty when set")
	}

	return nil
}

// GetFrameRate returns the frame_rate value or the default.
func (c *RenderConfig) GetFrameRate() float64 {
	if c.FrameRate == nil {
		return 10
	}
	return *c.FrameRate
}

// GetFadeRate returns the fade_rate value or the default.
func (c *RenderConfig) GetFadeRate() float64 {
	if c.FadeRate == nil {
		return 3
	}
	return *c.FadeRate
}

// GetFigureWidthIn returns the figure_width_in value or the default.
func (c *RenderConfig) GetFigureWidthIn() float64 {
	if c.FigureWidthIn == nil {
		return 5
	}
	return *c.FigureWidthIn
}

// GetFigureHeightIn returns the figure_height_in value or the default.
func (c *RenderConfig) GetFigureHeightIn() float64 {
	if c.FigureHeightIn == nil {
		return 5
	}
	return *c.FigureHeightIn
}

// GetDPI returns the dpi value or the default.
func (c *RenderConfig) GetDPI() float64 {
	if c.DPI == nil {
		return 100
	}
	return *c.DPI
}

// GetXMin returns the left edge of the plot in metres.
func (c *RenderConfig) GetXMin() float64 {
	if c.XMin == nil {
		return -1
	}
	return *c.XMin
}

// GetXMax returns the right edge of the plot in metres.
func (c *RenderConfig) GetXMax() float64 {
	if c.XMax == nil {
		return 10
	}
	return *c.XMax
}

// GetYMin returns the bottom edge of the plot in metres.
func (c *RenderConfig) GetYMin() float64 {
	if c.YMin == nil {
		return -5
	}
	return *c.YMin
}

// GetYMax returns the top edge of the plot in metres.
func (c *RenderConfig) GetYMax() float64 {
	if c.YMax == nil {
		return 5
	}
	return *c.YMax
}

// GetRayLength returns how far each sightline is drawn from its camera.
func (c *RenderConfig) GetRayLength() float64 {
	if c.RayLength == nil {
		return 10
	}
	return *c.RayLength
}

// GetMarkerRadius returns the radius of the camera marker in plot units.
func (c *RenderConfig) GetMarkerRadius() float64 {
	if c.MarkerRadius == nil {
		return 0.1
	}
	return *c.MarkerRadius
}

// GetEllipseNStd returns the number of standard deviations the uncertainty
// ellipse spans.
func (c *RenderConfig) GetEllipseNStd() float64 {
	if c.EllipseNStd == nil {
		return 3
	}
	return *c.EllipseNStd
}

// GetFFmpegPath returns the encoder binary, looked up on PATH by default.
func (c *RenderConfig) GetFFmpegPath() string {
	if c.FFmpegPath == nil {
		return "ffmpeg"
	}
	return *c.FFmpegPath
}
