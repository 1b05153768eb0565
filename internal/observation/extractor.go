package observation

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/btinference/internal/camera"
	"github.com/banshee-data/btinference/internal/fsutil"
	"github.com/banshee-data/btinference/internal/monitoring"
	"github.com/banshee-data/btinference/internal/timestamp"
	"github.com/golang/geo/r2"
)

// ErrMalformedRecord is returned for a detection record that is not a JSON
// array whose first element has numeric x and y fields.
var ErrMalformedRecord = errors.New("malformed detection record")

// CameraLookup resolves a "<set>/<camera>" identifier. *camera.Registry
// implements it.
type CameraLookup interface {
	Lookup(id string) (*camera.Camera, error)
}

type detection struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// ParseDetection decodes a detection record and returns its first pixel, with
// y measured from the top of the image.
func ParseDetection(data []byte) (r2.Point, error) {
	var recs []detection
	if err := json.Unmarshal(data, &recs); err != nil {
		return r2.Point{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if len(recs) == 0 {
		return r2.Point{}, fmt.Errorf("%w: empty record", ErrMalformedRecord)
	}
	if recs[0].X == nil || recs[0].Y == nil {
		return r2.Point{}, fmt.Errorf("%w: first element needs x and y", ErrMalformedRecord)
	}
	return r2.Point{X: *recs[0].X, Y: *recs[0].Y}, nil
}

type extractOptions struct {
	lenient bool
}

// ExtractOption configures Extract.
type ExtractOption func(*extractOptions)

// WithLenient skips detection records that cannot be read or parsed, logging
// a warning for each, instead of aborting the run. A detection set without a
// calibrated camera still aborts.
func WithLenient() ExtractOption {
	return func(o *extractOptions) { o.lenient = true }
}

// Extract reads every <path>/<tool>/*.json detection record for each
// detection set path, in the order given, and returns one observation per
// record. By default the first bad record aborts the whole extraction.
func Extract(fsys fsutil.FileSystem, paths []string, tool string, cameras CameraLookup, opts ...ExtractOption) (*Store, error) {
	var o extractOptions
	for _, opt := range opts {
		opt(&o)
	}

	store := NewStore()
	for _, path := range paths {
		id := camera.SetID(path)
		cam, err := cameras.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("detection set %s: %w", path, err)
		}

		files, err := fsys.Glob(filepath.Join(path, tool, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("list detections in %s: %w", path, err)
		}

		added := 0
		for _, file := range files {
			obs, err := extractOne(fsys, cam, file)
			if err != nil {
				if o.lenient {
					monitoring.Warnf("skipping %s: %v", file, err)
					continue
				}
				return nil, err
			}
			store.Append(obs)
			added++
		}
		monitoring.Logf("%s: %d observations from camera %s", path, added, id)
	}
	return store, nil
}

func extractOne(fsys fsutil.FileSystem, cam *camera.Camera, file string) (Observation, error) {
	data, err := fsys.ReadFile(file)
	if err != nil {
		return Observation{}, fmt.Errorf("read detection %s: %w", file, err)
	}

	pixel, err := ParseDetection(data)
	if err != nil {
		return Observation{}, fmt.Errorf("%s: %w", file, err)
	}

	t, err := timestamp.Parse(file)
	if err != nil {
		return Observation{}, fmt.Errorf("%s: %w", file, err)
	}

	dir := cam.PixelRay(r2.Point{X: pixel.X, Y: cam.FlipRow(pixel.Y)})
	return NewObservation(t, cam.Loc, dir, file), nil
}
