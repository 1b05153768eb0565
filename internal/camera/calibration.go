package camera

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// CalibrationFile is the record each calibration tool writes under
// <set>/<tool>/.
const CalibrationFile = "alignment.json"

// ErrMalformedCalibration is returned when a calibration record is not valid
// JSON or lacks one of its required fields.
var ErrMalformedCalibration = errors.New("malformed calibration record")

// calibrationRecord is the on-disk schema. Pointers distinguish a missing field
// from a zero value.
type calibrationRecord struct {
	Loc         []float64       `json:"loc"`
	Orientation json.RawMessage `json:"orientation"`
	HFOV        *float64        `json:"hfov"`
	VFOV        *float64        `json:"vfov"`
	Res         []int           `json:"res"`
}

// ParseCalibration decodes and validates a calibration record.
//
// orientation may be a 3-element rotation vector (axis-angle, radians) or a
// 3x3 camera-to-world rotation matrix.
func ParseCalibration(data []byte) (Params, error) {
	var rec calibrationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrMalformedCalibration, err)
	}

	if len(rec.Loc) != 3 {
		return Params{}, fmt.Errorf("%w: loc must have 3 elements, got %d", ErrMalformedCalibration, len(rec.Loc))
	}
	if rec.HFOV == nil || rec.VFOV == nil {
		return Params{}, fmt.Errorf("%w: hfov and vfov are required", ErrMalformedCalibration)
	}
	for name, fov := range map[string]float64{"hfov": *rec.HFOV, "vfov": *rec.VFOV} {
		if fov <= 0 || fov >= math.Pi {
			return Params{}, fmt.Errorf("%w: %s must be in (0, pi) radians, got %g", ErrMalformedCalibration, name, fov)
		}
	}
	if len(rec.Res) != 2 || rec.Res[0] <= 0 || rec.Res[1] <= 0 {
		return Params{}, fmt.Errorf("%w: res must be two positive integers, got %v", ErrMalformedCalibration, rec.Res)
	}

	rot, err := parseOrientation(rec.Orientation)
	if err != nil {
		return Params{}, err
	}

	return Params{
		Loc:      r3.Vector{X: rec.Loc[0], Y: rec.Loc[1], Z: rec.Loc[2]},
		Rotation: rot,
		HFOV:     *rec.HFOV,
		VFOV:     *rec.VFOV,
		Width:    rec.Res[0],
		Height:   rec.Res[1],
	}, nil
}

func parseOrientation(raw json.RawMessage) ([3][3]float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return [3][3]float64{}, fmt.Errorf("%w: orientation is required", ErrMalformedCalibration)
	}

	var vec []float64
	if err := json.Unmarshal(raw, &vec); err == nil {
		if len(vec) != 3 {
			return [3][3]float64{}, fmt.Errorf("%w: orientation vector must have 3 elements, got %d", ErrMalformedCalibration, len(vec))
		}
		return RotationFromVector(r3.Vector{X: vec[0], Y: vec[1], Z: vec[2]}), nil
	}

	var m [][]float64
	if err := json.Unmarshal(raw, &m); err != nil {
		return [3][3]float64{}, fmt.Errorf("%w: orientation: %v", ErrMalformedCalibration, err)
	}
	if len(m) != 3 {
		return [3][3]float64{}, fmt.Errorf("%w: orientation matrix must be 3x3", ErrMalformedCalibration)
	}
	var out [3][3]float64
	for i, row := range m {
		if len(row) != 3 {
			return [3][3]float64{}, fmt.Errorf("%w: orientation matrix must be 3x3", ErrMalformedCalibration)
		}
		copy(out[i][:], row)
	}
	return out, nil
}
