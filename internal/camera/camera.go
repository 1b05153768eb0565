// Package camera models the calibrated cameras that observe the tag and the
// registry that loads them from calibration sets.
package camera

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Params are the geometric parameters of one calibrated camera.
type Params struct {
	// Loc is the camera centre in the world frame.
	Loc r3.Vector
	// Rotation maps camera-frame directions into the world frame (row major).
	Rotation [3][3]float64
	// HFOV and VFOV are the full horizontal and vertical fields of view in radians.
	HFOV float64
	VFOV float64
	// Width and Height are the image resolution in pixels.
	Width  int
	Height int
}

// Projector maps a pixel to a unit line-of-sight direction in the world frame.
// The pixel's vertical axis runs bottom-up: row 0 of the image is Y = Height.
type Projector interface {
	PixelRay(p Params, pixel r2.Point) r3.Vector
}

// Camera is one entry of a Registry. It is immutable once loaded.
type Camera struct {
	// ID is "<set>/<camera>", the last two segments of the calibration path.
	ID string
	Params

	proj Projector
}

// New returns a camera that projects pixels with proj.
func New(id string, p Params, proj Projector) *Camera {
	if proj == nil {
		proj = Pinhole{}
	}
	return &Camera{ID: id, Params: p, proj: proj}
}

// PixelRay returns the world-frame direction through pixel, which must already
// use the bottom-up vertical axis (see FlipRow).
func (c *Camera) PixelRay(pixel r2.Point) r3.Vector {
	return c.proj.PixelRay(c.Params, pixel)
}

// FlipRow converts an image row measured from the top into the bottom-up
// vertical coordinate the projector expects.
func (c *Camera) FlipRow(y float64) float64 {
	return float64(c.Height) - y
}
