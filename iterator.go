package nanolog

import "github.com/nilotpal-labs/nanolog/internal/segmentset"

// RecordIterator lazily walks the contents of every record frame
// belonging to one key, in ascending (sequence, offset) order. It is
// finite, single-pass, and not restartable. It holds no file descriptor
// between calls to Next: a sealed segment's file is opened and closed
// again while that segment is read.
type RecordIterator struct {
	inner *segmentset.RecordIterator
}

// Next advances the iterator and reports whether a record was produced.
func (it *RecordIterator) Next() (content []byte, ok bool, err error) {
	return it.inner.Next()
}

// Close releases the iterator's own state. Segments remain owned by the
// engine.
func (it *RecordIterator) Close() error {
	return it.inner.Close()
}
