// Package testutil provides shared test utilities and fixtures.
//
// The fixtures mirror the on-disk layout of a recording session: calibration
// sets hold <tool>/alignment.json and detection sets hold <tool>/*.json.
package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/banshee-data/btinference/internal/fsutil"
	"github.com/banshee-data/btinference/internal/monitoring"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// MuteLogs silences monitoring.Logf for the duration of the test.
func MuteLogs(t testing.TB) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })
}

// WriteJSON marshals v into path on fsys.
func WriteJSON(t testing.TB, fsys fsutil.FileSystem, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	AssertNoError(t, err)
	AssertNoError(t, fsys.WriteFile(path, data, 0644))
}

// Calibration is a calibration record fixture.
type Calibration struct {
	Loc         [3]float64 `json:"loc"`
	Orientation [3]float64 `json:"orientation"`
	HFOV        float64    `json:"hfov"`
	VFOV        float64    `json:"vfov"`
	Res         [2]int     `json:"res"`
}

// DefaultCalibration returns an unrotated camera at loc with a 90 degree field
// of view in both axes.
func DefaultCalibration(loc [3]float64, width, height int) Calibration {
	return Calibration{
		Loc:  loc,
		HFOV: 1.5707963267948966,
		VFOV: 1.5707963267948966,
		Res:  [2]int{width, height},
	}
}

// WriteCalibration stores cal as the calibration record of set for tool.
func WriteCalibration(t testing.TB, fsys fsutil.FileSystem, set, tool string, cal Calibration) {
	t.Helper()
	WriteJSON(t, fsys, filepath.Join(set, tool, "alignment.json"), cal)
}

// WriteDetection stores a single-pixel detection record named name under
// <set>/<tool>/.
func WriteDetection(t testing.TB, fsys fsutil.FileSystem, set, tool, name string, x, y float64) string {
	t.Helper()
	path := filepath.Join(set, tool, name)
	WriteJSON(t, fsys, path, []map[string]float64{{"x": x, "y": y}})
	return path
}
