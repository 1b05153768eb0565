package inference

import (
	"testing"

	"github.com/banshee-data/btinference/internal/fsutil"
	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrack_Estimates(t *testing.T) {
	tr, err := ParseTrack([]byte(`[
		{"t": 10.0, "mean": [1, 2, 3], "cov": [[1,0,0],[0,1,0],[0,0,1]]},
		{"t": 10.1, "mean": [1.1, 2.1, 3], "cov": [[2,0.5,0],[0.5,1,0],[0,0,1]]}
	]`))
	require.NoError(t, err)

	assert.Equal(t, []float64{10.0, 10.1}, tr.Times())
	assert.Equal(t, r2.Point{X: 1.1, Y: 2.1}, tr.Mean2D(1))
	assert.Equal(t, 0.5, tr.Cov2D(1).At(1, 0))
}

func TestParseTrack_Stacked(t *testing.T) {
	tr, err := ParseTrack([]byte(` {
		"inputs": [[5.0,0],[5.5,0],[5.0,1],[5.5,1],[5.0,2],[5.5,2]],
		"mean": [[0,0,0],[1,1,1]],
		"cov": [[[1,0,0],[0,1,0],[0,0,1]], [[1,0,0],[0,1,0],[0,0,1]]]
	}`))
	require.NoError(t, err)
	assert.Equal(t, []float64{5.0, 5.5}, tr.Times())
	assert.Equal(t, 1, tr.Nearest(5.4))
}

func TestParseTrack_Malformed(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":          `[{"t":`,
		"missing time":      `[{"mean":[1,2,3],"cov":[[1,0,0],[0,1,0],[0,0,1]]}]`,
		"ragged cov":        `[{"t":1,"mean":[1,2,3],"cov":[[1,0,0],[0,1],[0,0,1]]}]`,
		"empty cov":         `[{"t":1,"mean":[1,2,3],"cov":[]}]`,
		"cov dim mismatch":  `[{"t":1,"mean":[1,2,3],"cov":[[1,0],[0,1]]}]`,
		"stacked no input":  `{"inputs":[],"mean":[],"cov":[]}`,
		"stacked short":     `{"inputs":[[1,0],[1,1],[1,2]],"mean":[],"cov":[]}`,
		"stacked empty row": `{"inputs":[[]],"mean":[],"cov":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTrack([]byte(doc))
			assert.ErrorIs(t, err, ErrMalformedTrack)
		})
	}
}

func TestLoadTrack(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("/run/track.json", []byte(`[{"t":1,"mean":[0,0],"cov":[[1,0],[0,1]]}]`), 0644))

	tr, err := LoadTrack(fsys, "/run/track.json")
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Len())

	_, err = LoadTrack(fsys, "/run/missing.json")
	assert.Error(t, err)
}
