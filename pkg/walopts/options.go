// Package walopts provides the functional-options configuration surface
// for the nanolog WAL engine: a plain Options struct, a defaulted
// constructor, and OptionFunc setters that store their input unchanged;
// Options.Validate is where invalid values are rejected.
package walopts

import (
	"time"

	"github.com/nilotpal-labs/nanolog/pkg/ierrors"
	"go.uber.org/zap"
)

// Options holds the configuration parameters fixed at WAL engine
// construction.
type Options struct {
	// EntryRetention is the total retention window for records written
	// under any key. Per-segment lifetime is EntryRetention /
	// SegmentsPerPeriod.
	EntryRetention time.Duration

	// SegmentsPerPeriod is how many segments a retention window is
	// divided into. Must be >= 1.
	SegmentsPerPeriod uint32

	// LockDirectory controls whether Engine.New acquires an advisory
	// flock on the WAL directory, guarding against two engines opening
	// the same directory concurrently.
	LockDirectory bool

	// Logger receives structured lifecycle and error events. A nil
	// Logger is replaced with a no-op logger so the engine never panics
	// on a caller who doesn't care about logs.
	Logger *zap.SugaredLogger
}

// OptionFunc mutates an Options value.
type OptionFunc func(*Options)

// WithEntryRetention overrides the total retention window. A
// non-positive value is passed through unchanged; Validate is what
// rejects it, not the option itself.
func WithEntryRetention(d time.Duration) OptionFunc {
	return func(o *Options) {
		o.EntryRetention = d
	}
}

// WithSegmentsPerPeriod overrides how many segments make up one
// retention window. A value below MinSegmentsPerPeriod is passed through
// unchanged; Validate is what rejects it.
func WithSegmentsPerPeriod(n uint32) OptionFunc {
	return func(o *Options) {
		o.SegmentsPerPeriod = n
	}
}

// WithDirectoryLock toggles the advisory directory lock.
func WithDirectoryLock(enabled bool) OptionFunc {
	return func(o *Options) {
		o.LockDirectory = enabled
	}
}

// WithLogger supplies a structured logger for the engine to use.
func WithLogger(logger *zap.SugaredLogger) OptionFunc {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// SegmentLifetime returns the lifetime of a single segment: the retention
// window divided evenly across SegmentsPerPeriod segments.
func (o *Options) SegmentLifetime() time.Duration {
	return o.EntryRetention / time.Duration(o.SegmentsPerPeriod)
}

// Validate checks that Options describes a usable configuration,
// returning an *ierrors.ConfigError on the first problem found.
func (o *Options) Validate() error {
	if o.EntryRetention <= 0 {
		return ierrors.NewConfigError("entry retention must be positive").
			WithField("EntryRetention").WithProvided(o.EntryRetention)
	}
	if o.SegmentsPerPeriod < MinSegmentsPerPeriod {
		return ierrors.NewConfigError("segments per retention period must be at least 1").
			WithField("SegmentsPerPeriod").WithProvided(o.SegmentsPerPeriod)
	}
	return nil
}

// Resolve applies opts on top of the defaults and ensures a non-nil
// Logger, returning a fully usable Options value.
func Resolve(opts ...OptionFunc) Options {
	o := NewDefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	return o
}
