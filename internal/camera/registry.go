package camera

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banshee-data/btinference/internal/fsutil"
	"github.com/banshee-data/btinference/internal/monitoring"
)

var (
	// ErrCalibrationNotFound is returned when a calibration set has no record
	// for the requested tool.
	ErrCalibrationNotFound = errors.New("calibration record not found")
	// ErrCameraNotFound is returned by Lookup for an unknown identifier, which
	// means the detection sets and calibration sets do not match.
	ErrCameraNotFound = errors.New("camera not found")
	// ErrDuplicateCamera is returned in strict mode when two calibration paths
	// share an identifier.
	ErrDuplicateCamera = errors.New("duplicate camera identifier")
)

// SetID converts a set path into its "<set>/<camera>" identifier: the last two
// path segments joined with '/'.
func SetID(path string) string {
	var parts []string
	for _, p := range strings.Split(filepath.ToSlash(filepath.Clean(path)), "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, "/")
}

// Registry maps camera identifiers to cameras. It is read-only after
// LoadRegistry returns.
type Registry struct {
	cameras map[string]*Camera
}

type options struct {
	projector Projector
	strict    bool
}

// Option configures LoadRegistry.
type Option func(*options)

// WithProjector sets the pixel-to-ray model used by every camera. The default
// is Pinhole.
func WithProjector(p Projector) Option {
	return func(o *options) { o.projector = p }
}

// WithStrictDuplicates makes a repeated identifier an error instead of
// replacing the earlier camera.
func WithStrictDuplicates() Option {
	return func(o *options) { o.strict = true }
}

// LoadRegistry reads <path>/<tool>/alignment.json for every calibration set
// path, in order. A repeated identifier replaces the earlier camera unless
// WithStrictDuplicates is given.
func LoadRegistry(fsys fsutil.FileSystem, paths []string, tool string, opts ...Option) (*Registry, error) {
	o := options{projector: Pinhole{}}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{cameras: make(map[string]*Camera, len(paths))}
	for _, path := range paths {
		monitoring.Logf("Looking in %s for camera", path)

		id := SetID(path)
		file := filepath.Join(path, tool, CalibrationFile)
		data, err := fsys.ReadFile(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrCalibrationNotFound, file)
			}
			return nil, fmt.Errorf("read calibration %s: %w", file, err)
		}

		params, err := ParseCalibration(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}

		if _, dup := r.cameras[id]; dup {
			if o.strict {
				return nil, fmt.Errorf("%w: %s (from %s)", ErrDuplicateCamera, id, path)
			}
			monitoring.Warnf("camera %s redefined by %s; later calibration wins", id, path)
		}
		r.cameras[id] = New(id, params, o.projector)
	}
	return r, nil
}

// Lookup returns the camera registered under id.
func (r *Registry) Lookup(id string) (*Camera, error) {
	c, ok := r.cameras[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCameraNotFound, id)
	}
	return c, nil
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.cameras))
	for id := range r.cameras {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered cameras.
func (r *Registry) Len() int {
	return len(r.cameras)
}
