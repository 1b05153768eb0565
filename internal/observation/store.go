// Package observation turns per-camera pixel detections into world-frame ray
// observations and keeps them for the rest of the run.
package observation

import (
	"math"

	"github.com/golang/geo/r3"
)

// Observation is one line-of-sight sighting of the tag.
type Observation struct {
	// Time is seconds since midnight with microsecond precision.
	Time float64
	// Vector is the camera location followed by the unit ray direction.
	Vector [6]float64
	// Source is the detection record the sighting came from.
	Source string
}

// NewObservation packs a camera location and ray direction into an Observation.
func NewObservation(t float64, origin, dir r3.Vector, source string) Observation {
	return Observation{
		Time:   t,
		Vector: [6]float64{origin.X, origin.Y, origin.Z, dir.X, dir.Y, dir.Z},
		Source: source,
	}
}

// Origin returns the camera location.
func (o Observation) Origin() r3.Vector {
	return r3.Vector{X: o.Vector[0], Y: o.Vector[1], Z: o.Vector[2]}
}

// Direction returns the ray direction.
func (o Observation) Direction() r3.Vector {
	return r3.Vector{X: o.Vector[3], Y: o.Vector[4], Z: o.Vector[5]}
}

// PointAt returns the point length units along the ray.
func (o Observation) PointAt(length float64) r3.Vector {
	return o.Origin().Add(o.Direction().Mul(length))
}

// Store holds observations in discovery order as three index-aligned
// sequences. Append is the only mutator, so the sequences always have the
// same length.
type Store struct {
	times   []float64
	vectors [][6]float64
	sources []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds o at the end of the store.
func (s *Store) Append(o Observation) {
	s.times = append(s.times, o.Time)
	s.vectors = append(s.vectors, o.Vector)
	s.sources = append(s.sources, o.Source)
}

// Len returns the number of observations.
func (s *Store) Len() int {
	return len(s.times)
}

// At returns the i-th observation in discovery order.
func (s *Store) At(i int) Observation {
	return Observation{Time: s.times[i], Vector: s.vectors[i], Source: s.sources[i]}
}

// Times returns a copy of the observation times.
func (s *Store) Times() []float64 {
	return append([]float64(nil), s.times...)
}

// Vectors returns a copy of the 6-vectors.
func (s *Store) Vectors() [][6]float64 {
	return append([][6]float64(nil), s.vectors...)
}

// Sources returns a copy of the source identifiers.
func (s *Store) Sources() []string {
	return append([]string(nil), s.sources...)
}

// All returns every observation in discovery order.
func (s *Store) All() []Observation {
	out := make([]Observation, s.Len())
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}

// TimeRange returns the earliest and latest observation times. ok is false
// for an empty store.
func (s *Store) TimeRange() (lo, hi float64, ok bool) {
	if len(s.times) == 0 {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, t := range s.times {
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	return lo, hi, true
}

// Within returns the indices of observations whose time is strictly less than
// window away from t, in discovery order.
func (s *Store) Within(t, window float64) []int {
	var idx []int
	for i, ot := range s.times {
		if math.Abs(ot-t) < window {
			idx = append(idx, i)
		}
	}
	return idx
}
