package nanolog

import "github.com/nilotpal-labs/nanolog/pkg/ierrors"

// IsEntryNotFound reports whether err is, or wraps, a dangling EntryRef
// lookup failure.
func IsEntryNotFound(err error) bool {
	return ierrors.IsNotFound(err)
}

// IsCorrupted reports whether err is, or wraps, a framing signature
// mismatch.
func IsCorrupted(err error) bool {
	return ierrors.IsCorrupted(err)
}

// IsHeaderTooLarge reports whether err is, or wraps, an oversize record
// header.
func IsHeaderTooLarge(err error) bool {
	return ierrors.IsHeaderTooLarge(err)
}

// IsInvalidConfig reports whether err is, or wraps, a rejected engine
// configuration.
func IsInvalidConfig(err error) bool {
	return ierrors.IsInvalidConfig(err)
}
