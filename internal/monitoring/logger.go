// Package monitoring holds the process-wide diagnostic logger used by the
// pipeline packages.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests mute it by passing nil.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs through Logf with a "warning: " prefix. Records skipped in
// lenient extraction and duplicate calibration sets are reported this way.
func Warnf(format string, v ...interface{}) {
	Logf("warning: "+format, v...)
}

// Tagged returns a logger that prefixes every line with "[tag] " and writes
// to the logger installed at the time of the call, so the result can itself be
// passed to SetLogger. The CLI tags lines with the run identifier.
func Tagged(tag string) func(format string, v ...interface{}) {
	prev := Logf
	return func(format string, v ...interface{}) {
		prev("["+tag+"] "+format, v...)
	}
}
