package render

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEllipse_AxisAligned(t *testing.T) {
	// sigma_x = 2, sigma_y = 1, 1-sigma contour.
	cov := mat.NewSymDense(2, []float64{4, 0, 0, 1})
	pts, err := Ellipse(r2.Point{X: 3, Y: -1}, cov, 1, 360)
	require.NoError(t, err)
	require.Len(t, pts, 360)

	for _, p := range pts {
		d := p.Sub(r2.Point{X: 3, Y: -1})
		// Every point satisfies (x/2)^2 + y^2 = 1.
		assert.InDelta(t, 1, d.X*d.X/4+d.Y*d.Y, 1e-9)
	}

	var maxX, maxY float64
	for _, p := range pts {
		maxX = math.Max(maxX, math.Abs(p.X-3))
		maxY = math.Max(maxY, math.Abs(p.Y+1))
	}
	assert.InDelta(t, 2, maxX, 1e-9)
	assert.InDelta(t, 1, maxY, 1e-9)
}

func TestEllipse_Correlated(t *testing.T) {
	cov := mat.NewSymDense(2, []float64{2, 1.5, 1.5, 2})
	pts, err := Ellipse(r2.Point{}, cov, 3, 64)
	require.NoError(t, err)

	var inv mat.Dense
	require.NoError(t, inv.Inverse(cov))
	for _, p := range pts {
		v := mat.NewVecDense(2, []float64{p.X, p.Y})
		// Mahalanobis distance is nStd on the contour.
		assert.InDelta(t, 9, mat.Inner(v, &inv, v), 1e-9)
	}
}

func TestEllipse_Degenerate(t *testing.T) {
	pts, err := Ellipse(r2.Point{X: 1}, mat.NewSymDense(2, []float64{0, 0, 0, 0}), 3, 8)
	require.NoError(t, err)
	for _, p := range pts {
		assert.InDelta(t, 1, p.X, 1e-12)
		assert.InDelta(t, 0, p.Y, 1e-12)
	}

	_, err = Ellipse(r2.Point{}, mat.NewSymDense(3, nil), 1, 8)
	assert.ErrorIs(t, err, ErrBadCovariance)
}

func TestCircle(t *testing.T) {
	for _, p := range circle(r2.Point{X: 2, Y: 2}, 0.1, 16) {
		assert.InDelta(t, 0.1, p.Sub(r2.Point{X: 2, Y: 2}).Norm(), 1e-12)
	}
}
