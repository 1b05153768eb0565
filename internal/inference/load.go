package inference

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/banshee-data/btinference/internal/fsutil"
	"gonum.org/v1/gonum/mat"
)

// estimateRecord is one element of the per-estimate track format:
//
//	[{"t": 43200.1, "mean": [x, y, z], "cov": [[..], [..], [..]]}, ...]
type estimateRecord struct {
	T    *float64    `json:"t"`
	Mean []float64   `json:"mean"`
	Cov  [][]float64 `json:"cov"`
}

// stackedRecord is the engine's native output: the stacked test inputs plus
// per-estimate means and covariances.
//
//	{"inputs": [[t, axis], ...], "mean": [[x, y, z], ...], "cov": [[[..]], ...]}
type stackedRecord struct {
	Inputs [][]float64   `json:"inputs"`
	Mean   [][]float64   `json:"mean"`
	Cov    [][][]float64 `json:"cov"`
}

// LoadTrack reads a track file in either the per-estimate or the stacked
// format.
func LoadTrack(fsys fsutil.FileSystem, path string) (*Track, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track %s: %w", path, err)
	}
	tr, err := ParseTrack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// ParseTrack decodes a track document.
func ParseTrack(data []byte) (*Track, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		return parseStacked(data)
	}
	return parseEstimates(data)
}

func parseEstimates(data []byte) (*Track, error) {
	var recs []estimateRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTrack, err)
	}
	times := make([]float64, len(recs))
	means := make([][]float64, len(recs))
	covs := make([]*mat.SymDense, len(recs))
	for i, r := range recs {
		if r.T == nil {
			return nil, fmt.Errorf("%w: estimate %d has no time", ErrMalformedTrack, i)
		}
		cov, err := symDense(r.Cov)
		if err != nil {
			return nil, fmt.Errorf("estimate %d: %w", i, err)
		}
		times[i], means[i], covs[i] = *r.T, r.Mean, cov
	}
	return NewTrack(times, means, covs)
}

func parseStacked(data []byte) (*Track, error) {
	var rec stackedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTrack, err)
	}
	if len(rec.Inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs", ErrMalformedTrack)
	}
	x := mat.NewDense(len(rec.Inputs), 1, nil)
	for i, row := range rec.Inputs {
		if len(row) == 0 {
			return nil, fmt.Errorf("%w: input row %d is empty", ErrMalformedTrack, i)
		}
		x.Set(i, 0, row[0])
	}

	covs := make([]*mat.SymDense, len(rec.Cov))
	for i, c := range rec.Cov {
		cov, err := symDense(c)
		if err != nil {
			return nil, fmt.Errorf("estimate %d: %w", i, err)
		}
		covs[i] = cov
	}
	return NewTrack(TimesFromStacked(x), rec.Mean, covs)
}

// symDense converts a square row-major matrix into a SymDense, symmetrising
// away round-off in the off-diagonal terms.
func symDense(rows [][]float64) (*mat.SymDense, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty covariance", ErrMalformedTrack)
	}
	for _, r := range rows {
		if len(r) != n {
			return nil, fmt.Errorf("%w: covariance must be square", ErrMalformedTrack)
		}
	}
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, (rows[i][j]+rows[j][i])/2)
		}
	}
	return s, nil
}
