// Package inference holds the position estimates produced by the trajectory
// inference engine: one mean and covariance per estimate time.
package inference

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// ErrMalformedTrack is returned when estimate times, means and covariances do
// not line up.
var ErrMalformedTrack = errors.New("malformed track")

// Track is an immutable sequence of position estimates.
type Track struct {
	times  []float64
	means  [][]float64
	covs   []*mat.SymDense
	sorted bool
}

// NewTrack validates and copies the estimates. Each mean needs at least two
// components and each covariance must be square with the mean's dimension.
func NewTrack(times []float64, means [][]float64, covs []*mat.SymDense) (*Track, error) {
	if len(means) != len(times) || len(covs) != len(times) {
		return nil, fmt.Errorf("%w: %d times, %d means, %d covariances", ErrMalformedTrack, len(times), len(means), len(covs))
	}
	for i := range times {
		if len(means[i]) < 2 {
			return nil, fmt.Errorf("%w: estimate %d has %d mean components, need at least 2", ErrMalformedTrack, i, len(means[i]))
		}
		if covs[i] == nil || covs[i].SymmetricDim() != len(means[i]) {
			return nil, fmt.Errorf("%w: estimate %d covariance does not match mean dimension %d", ErrMalformedTrack, i, len(means[i]))
		}
	}
	tr := &Track{
		times:  append([]float64(nil), times...),
		means:  make([][]float64, len(means)),
		covs:   make([]*mat.SymDense, len(covs)),
		sorted: sort.Float64sAreSorted(times),
	}
	for i := range means {
		tr.means[i] = append([]float64(nil), means[i]...)
		c := mat.NewSymDense(covs[i].SymmetricDim(), nil)
		c.CopySym(covs[i])
		tr.covs[i] = c
	}
	return tr, nil
}

// Len returns the number of estimates.
func (t *Track) Len() int {
	return len(t.times)
}

// Time returns the time of estimate i.
func (t *Track) Time(i int) float64 {
	return t.times[i]
}

// Times returns a copy of the estimate times.
func (t *Track) Times() []float64 {
	return append([]float64(nil), t.times...)
}

// Mean2D returns the x/y components of estimate i.
func (t *Track) Mean2D(i int) r2.Point {
	return r2.Point{X: t.means[i][0], Y: t.means[i][1]}
}

// Cov2D returns the x/y block of estimate i's covariance.
func (t *Track) Cov2D(i int) *mat.SymDense {
	c := t.covs[i]
	return mat.NewSymDense(2, []float64{
		c.At(0, 0), c.At(0, 1),
		c.At(1, 0), c.At(1, 1),
	})
}

// Nearest returns the index of the estimate whose time is closest to ts. Ties
// go to the lowest index. It returns -1 for an empty track.
func (t *Track) Nearest(ts float64) int {
	if len(t.times) == 0 {
		return -1
	}
	if t.sorted {
		return nearestSorted(t.times, ts)
	}
	return nearestLinear(t.times, ts)
}

func nearestLinear(times []float64, ts float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, v := range times {
		if d := math.Abs(v - ts); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// nearestSorted matches nearestLinear on ascending times.
func nearestSorted(times []float64, ts float64) int {
	j := sort.SearchFloat64s(times, ts)
	if j == 0 {
		return 0
	}
	below := times[j-1]
	first := sort.SearchFloat64s(times, below)
	if j == len(times) || math.Abs(ts-below) <= math.Abs(times[j]-ts) {
		return first
	}
	return j
}

// TimesFromStacked returns the estimate times from a stacked test-input
// matrix. The inference engine stacks one block of rows per spatial axis with
// the time in column 0, so the first third of the rows covers every estimate
// once.
func TimesFromStacked(x mat.Matrix) []float64 {
	rows, _ := x.Dims()
	n := rows / 3
	times := make([]float64, n)
	for i := range times {
		times[i] = x.At(i, 0)
	}
	return times
}
