package camera

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-12

func assertVec(t *testing.T, want, got r3.Vector) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "X")
	assert.InDelta(t, want.Y, got.Y, eps, "Y")
	assert.InDelta(t, want.Z, got.Z, eps, "Z")
}

func testParams() Params {
	return Params{
		Rotation: RotationFromVector(r3.Vector{}),
		HFOV:     math.Pi / 2,
		VFOV:     math.Pi / 2,
		Width:    100,
		Height:   100,
	}
}

func TestRotationFromVector(t *testing.T) {
	t.Run("zero is identity", func(t *testing.T) {
		assert.Equal(t, [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, RotationFromVector(r3.Vector{}))
	})

	t.Run("quarter turn about Z", func(t *testing.T) {
		r := RotationFromVector(r3.Vector{Z: math.Pi / 2})
		// Column 0 is the image of +X.
		assertVec(t, r3.Vector{Y: 1}, r3.Vector{X: r[0][0], Y: r[1][0], Z: r[2][0]})
	})
}

func TestPinhole_PixelRay(t *testing.T) {
	p := testParams()

	tests := []struct {
		name  string
		pixel r2.Point
		want  r3.Vector
	}{
		{"centre is the optical axis", r2.Point{X: 50, Y: 50}, r3.Vector{X: 1}},
		{"right edge", r2.Point{X: 100, Y: 50}, r3.Vector{X: 1, Y: -1}.Normalize()},
		{"left edge", r2.Point{X: 0, Y: 50}, r3.Vector{X: 1, Y: 1}.Normalize()},
		{"top edge", r2.Point{X: 50, Y: 100}, r3.Vector{X: 1, Z: 1}.Normalize()},
		{"bottom edge", r2.Point{X: 50, Y: 0}, r3.Vector{X: 1, Z: -1}.Normalize()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pinhole{}.PixelRay(p, tt.pixel)
			assertVec(t, tt.want, got)
			assert.InDelta(t, 1, got.Norm(), eps)
		})
	}
}

func TestPinhole_Rotated(t *testing.T) {
	p := testParams()
	p.Rotation = RotationFromVector(r3.Vector{Z: math.Pi / 2})

	assertVec(t, r3.Vector{Y: 1}, Pinhole{}.PixelRay(p, r2.Point{X: 50, Y: 50}))
}

func TestCamera_FlipRow(t *testing.T) {
	c := New("A/1", Params{Width: 640, Height: 480}, nil)
	assert.Equal(t, 470.0, c.FlipRow(10))
	assert.Equal(t, 0.0, c.FlipRow(480))
}

func TestParseCalibration(t *testing.T) {
	t.Run("rotation vector", func(t *testing.T) {
		p, err := ParseCalibration([]byte(`{"loc":[1,2,3],"orientation":[0,0,0],"hfov":0.8,"vfov":0.6,"res":[2048,1536]}`))
		require.NoError(t, err)
		assert.Equal(t, r3.Vector{X: 1, Y: 2, Z: 3}, p.Loc)
		assert.Equal(t, 0.8, p.HFOV)
		assert.Equal(t, 0.6, p.VFOV)
		assert.Equal(t, 2048, p.Width)
		assert.Equal(t, 1536, p.Height)
		assert.Equal(t, RotationFromVector(r3.Vector{}), p.Rotation)
	})

	t.Run("rotation matrix", func(t *testing.T) {
		p, err := ParseCalibration([]byte(`{"loc":[0,0,0],"orientation":[[0,-1,0],[1,0,0],[0,0,1]],"hfov":0.8,"vfov":0.6,"res":[10,10]}`))
		require.NoError(t, err)
		assert.Equal(t, [3][3]float64{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}}, p.Rotation)
	})
}

func TestParseCalibration_Malformed(t *testing.T) {
	tests := map[string]string{
		"not json":           `{"loc":`,
		"short loc":          `{"loc":[0,0],"orientation":[0,0,0],"hfov":0.8,"vfov":0.6,"res":[10,10]}`,
		"missing hfov":       `{"loc":[0,0,0],"orientation":[0,0,0],"vfov":0.6,"res":[10,10]}`,
		"zero vfov":          `{"loc":[0,0,0],"orientation":[0,0,0],"hfov":0.8,"vfov":0,"res":[10,10]}`,
		"missing res":        `{"loc":[0,0,0],"orientation":[0,0,0],"hfov":0.8,"vfov":0.6}`,
		"fractional res":     `{"loc":[0,0,0],"orientation":[0,0,0],"hfov":0.8,"vfov":0.6,"res":[10.5,10]}`,
		"negative res":       `{"loc":[0,0,0],"orientation":[0,0,0],"hfov":0.8,"vfov":0.6,"res":[-10,10]}`,
		"missing rotation":   `{"loc":[0,0,0],"hfov":0.8,"vfov":0.6,"res":[10,10]}`,
		"short rotation":     `{"loc":[0,0,0],"orientation":[0,0],"hfov":0.8,"vfov":0.6,"res":[10,10]}`,
		"ragged matrix":      `{"loc":[0,0,0],"orientation":[[1,0,0],[0,1],[0,0,1]],"hfov":0.8,"vfov":0.6,"res":[10,10]}`,
		"orientation scalar": `{"loc":[0,0,0],"orientation":1,"hfov":0.8,"vfov":0.6,"res":[10,10]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCalibration([]byte(doc))
			assert.ErrorIs(t, err, ErrMalformedCalibration)
		})
	}
}
