// Package trace provides the leveled logging gate and the traced-operation
// wrapper the scrape cycle runs its steps through: every wrapped call logs
// its arguments at debug level and logs failures with full context before
// returning them unchanged.
package trace

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
)

var level atomic.Int32

func init() {
	level.Store(int32(LevelInfo))
}

func SetLevel(l Level) {
	level.Store(int32(l))
}

// ParseLevel maps the -loglevel flag values. Unknown values fall back to
// info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warning", "warn":
		return LevelWarning
	default:
		return LevelInfo
	}
}

func Debugf(format string, args ...interface{}) {
	if Level(level.Load()) <= LevelDebug {
		log.Printf("DEBUG "+format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if Level(level.Load()) <= LevelInfo {
		log.Printf(format, args...)
	}
}

func Warnf(format string, args ...interface{}) {
	log.Printf("WARNING "+format, args...)
}

// Traced runs fn, logging the call at debug level and any failure with the
// operation name and rendered arguments. The error is returned as-is so
// callers keep their normal handling.
func Traced(name string, fn func() error, args ...interface{}) error {
	sig := renderArgs(args)
	Debugf("calling %s(%s)", name, sig)
	if err := fn(); err != nil {
		Warnf("%s(%s) failed: %v", name, sig, err)
		return err
	}
	return nil
}

// TracedValue is Traced for operations that produce a value.
func TracedValue[T any](name string, fn func() (T, error), args ...interface{}) (T, error) {
	sig := renderArgs(args)
	Debugf("calling %s(%s)", name, sig)
	v, err := fn()
	if err != nil {
		Warnf("%s(%s) failed: %v", name, sig, err)
	}
	return v, err
}

func renderArgs(args []interface{}) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		switch a.(type) {
		case string, bool, int, int64, float64, []string:
			parts = append(parts, fmt.Sprintf("%v", a))
		default:
			parts = append(parts, "…")
		}
	}
	return strings.Join(parts, ", ")
}
