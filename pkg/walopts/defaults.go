package walopts

import "time"

const (
	// DefaultEntryRetention is the default total retention window for
	// records written to any key.
	DefaultEntryRetention = 7 * 24 * time.Hour

	// DefaultSegmentsPerPeriod is the default number of segments a
	// retention window is divided into.
	DefaultSegmentsPerPeriod uint32 = 10

	// MinSegmentsPerPeriod is the minimum legal value for
	// SegmentsPerPeriod; segments-per-period of zero would make the
	// per-segment lifetime undefined.
	MinSegmentsPerPeriod uint32 = 1
)

// NewDefaultOptions returns the default Options.
func NewDefaultOptions() Options {
	return Options{
		EntryRetention:    DefaultEntryRetention,
		SegmentsPerPeriod: DefaultSegmentsPerPeriod,
		LockDirectory:     true,
	}
}
