package render

import (
	"errors"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// ErrBadCovariance is returned when a covariance block cannot be decomposed.
var ErrBadCovariance = errors.New("covariance is not decomposable")

// Ellipse returns segments points on the nStd-sigma contour of a 2D Gaussian
// with the given mean and 2x2 covariance. Negative eigenvalues from round-off
// are treated as zero, which collapses the ellipse to a segment.
func Ellipse(mean r2.Point, cov mat.Symmetric, nStd float64, segments int) ([]r2.Point, error) {
	if cov.SymmetricDim() != 2 {
		return nil, ErrBadCovariance
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return nil, ErrBadCovariance
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	axes := [2]r2.Point{}
	for k := 0; k < 2; k++ {
		r := nStd * math.Sqrt(math.Max(vals[k], 0))
		axes[k] = r2.Point{X: vecs.At(0, k), Y: vecs.At(1, k)}.Mul(r)
	}

	pts := make([]r2.Point, segments)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = mean.Add(axes[0].Mul(math.Cos(theta))).Add(axes[1].Mul(math.Sin(theta)))
	}
	return pts, nil
}

// circle returns a polygon approximating a circle in data coordinates.
func circle(centre r2.Point, radius float64, segments int) []r2.Point {
	pts := make([]r2.Point, segments)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = r2.Point{X: centre.X + radius*math.Cos(theta), Y: centre.Y + radius*math.Sin(theta)}
	}
	return pts
}
