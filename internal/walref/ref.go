// Package walref defines EntryRef, the opaque position reference every
// append returns. It lives in its own tiny package so that both the
// internal storage layers and the public nanolog facade can depend on
// the same type without an import cycle.
package walref

import "fmt"

// EntryRef is a stable position reference for a single on-disk record
// frame: which key-hash partition, which segment within it, and the byte
// offset of the frame's signature within that segment. It is a plain
// value — copyable, comparable, printable — and remains valid only while
// the referenced segment still exists on disk; compaction can make it
// dangle.
type EntryRef struct {
	KeyHash        uint64
	SequenceNumber uint64
	Offset         uint64
}

// String renders the ref for diagnostics and logging.
func (r EntryRef) String() string {
	return fmt.Sprintf("EntryRef{keyHash:%#x seq:%d offset:%d}", r.KeyHash, r.SequenceNumber, r.Offset)
}
