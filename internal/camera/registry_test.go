package camera_test

import (
	"testing"

	"github.com/banshee-data/btinference/internal/camera"
	"github.com/banshee-data/btinference/internal/fsutil"
	"github.com/banshee-data/btinference/internal/monitoring"
	"github.com/banshee-data/btinference/internal/testutil"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tool = "btalignment"

func TestSetID(t *testing.T) {
	tests := map[string]string{
		"session/set2/A/1":   "A/1",
		"/data/s1/12/02G146": "12/02G146",
		"A/1/":               "A/1",
		"A/1":                "A/1",
		"1":                  "1",
		"./A/./1":            "A/1",
	}
	for in, want := range tests {
		assert.Equal(t, want, camera.SetID(in), in)
	}
}

func TestLoadRegistry_DistinctCameras(t *testing.T) {
	testutil.MuteLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	testutil.WriteCalibration(t, fsys, "/session/A/1", tool, testutil.DefaultCalibration([3]float64{0, 0, 0}, 100, 100))
	testutil.WriteCalibration(t, fsys, "/session/A/2", tool, testutil.DefaultCalibration([3]float64{5, -1, 2}, 640, 480))

	reg, err := camera.LoadRegistry(fsys, []string{"/session/A/1", "/session/A/2"}, tool)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"A/1", "A/2"}, reg.IDs())

	c1, err := reg.Lookup("A/1")
	require.NoError(t, err)
	c2, err := reg.Lookup("A/2")
	require.NoError(t, err)
	assert.NotSame(t, c1, c2)

	assert.Equal(t, "A/1", c1.ID)
	assert.Equal(t, r3.Vector{}, c1.Loc)
	assert.Equal(t, 100, c1.Width)

	assert.Equal(t, "A/2", c2.ID)
	assert.Equal(t, r3.Vector{X: 5, Y: -1, Z: 2}, c2.Loc)
	assert.Equal(t, 640, c2.Width)
	assert.Equal(t, 480, c2.Height)
}

func TestLoadRegistry_LogsEachPath(t *testing.T) {
	var lines []string
	original := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...interface{}) { lines = append(lines, format) })
	t.Cleanup(func() { monitoring.Logf = original })

	fsys := fsutil.NewMemoryFileSystem()
	testutil.WriteCalibration(t, fsys, "/s/A/1", tool, testutil.DefaultCalibration([3]float64{}, 10, 10))
	testutil.WriteCalibration(t, fsys, "/s/A/2", tool, testutil.DefaultCalibration([3]float64{}, 10, 10))

	_, err := camera.LoadRegistry(fsys, []string{"/s/A/1", "/s/A/2"}, tool)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestLoadRegistry_MissingCalibration(t *testing.T) {
	testutil.MuteLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	testutil.WriteCalibration(t, fsys, "/s/A/1", "othertool", testutil.DefaultCalibration([3]float64{}, 10, 10))

	_, err := camera.LoadRegistry(fsys, []string{"/s/A/1"}, tool)
	require.ErrorIs(t, err, camera.ErrCalibrationNotFound)
	assert.Contains(t, err.Error(), "/s/A/1/btalignment/alignment.json")
}

func TestLoadRegistry_Malformed(t *testing.T) {
	testutil.MuteLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("/s/A/1/btalignment/alignment.json", []byte(`{"loc":[0,0,0]}`), 0644))

	_, err := camera.LoadRegistry(fsys, []string{"/s/A/1"}, tool)
	require.ErrorIs(t, err, camera.ErrMalformedCalibration)
	assert.Contains(t, err.Error(), "/s/A/1/btalignment/alignment.json")
}

func TestLoadRegistry_Duplicates(t *testing.T) {
	testutil.MuteLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	testutil.WriteCalibration(t, fsys, "/day1/A/1", tool, testutil.DefaultCalibration([3]float64{1, 0, 0}, 10, 10))
	testutil.WriteCalibration(t, fsys, "/day2/A/1", tool, testutil.DefaultCalibration([3]float64{2, 0, 0}, 10, 10))
	paths := []string{"/day1/A/1", "/day2/A/1"}

	t.Run("last write wins", func(t *testing.T) {
		reg, err := camera.LoadRegistry(fsys, paths, tool)
		require.NoError(t, err)
		assert.Equal(t, 1, reg.Len())
		c, err := reg.Lookup("A/1")
		require.NoError(t, err)
		assert.Equal(t, 2.0, c.Loc.X)
	})

	t.Run("strict", func(t *testing.T) {
		_, err := camera.LoadRegistry(fsys, paths, tool, camera.WithStrictDuplicates())
		assert.ErrorIs(t, err, camera.ErrDuplicateCamera)
	})
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg, err := camera.LoadRegistry(fsutil.NewMemoryFileSystem(), nil, tool)
	require.NoError(t, err)

	_, err = reg.Lookup("B/9")
	assert.ErrorIs(t, err, camera.ErrCameraNotFound)
}

type fixedProjector struct{ dir r3.Vector }

func (f fixedProjector) PixelRay(camera.Params, r2.Point) r3.Vector { return f.dir }

func TestLoadRegistry_WithProjector(t *testing.T) {
	testutil.MuteLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	testutil.WriteCalibration(t, fsys, "/s/A/1", tool, testutil.DefaultCalibration([3]float64{}, 10, 10))

	want := r3.Vector{Z: 1}
	reg, err := camera.LoadRegistry(fsys, []string{"/s/A/1"}, tool, camera.WithProjector(fixedProjector{want}))
	require.NoError(t, err)
	c, err := reg.Lookup("A/1")
	require.NoError(t, err)
	assert.Equal(t, want, c.PixelRay(r2.Point{X: 3, Y: 4}))
}
