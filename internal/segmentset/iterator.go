package segmentset

import "github.com/nilotpal-labs/nanolog/internal/segment"

// RecordIterator lazily walks the contents of every frame across every
// segment of a key's SegmentSet, in ascending (sequence, offset) order.
// It is finite and single-pass. Each segment is read whole when the
// iterator reaches it: the active segment through its already-open
// handle, a sealed one by opening its file and closing it again before
// Next returns, so the iterator holds no file descriptor of its own.
type RecordIterator struct {
	segments []*segment.Segment
	segIdx   int
	pending  [][]byte
	err      error
	done     bool
}

// newRecordIterator builds an iterator over segments, which must already
// be sorted ascending by sequence number.
func newRecordIterator(segments []*segment.Segment) *RecordIterator {
	return &RecordIterator{segments: segments}
}

// Next advances the iterator and reports whether a record was produced.
// Once ok is false, the iterator is exhausted; a non-nil err then
// distinguishes a read failure from ordinary exhaustion.
func (it *RecordIterator) Next() (content []byte, ok bool, err error) {
	if it.done {
		return nil, false, it.err
	}

	for len(it.pending) == 0 {
		if it.segIdx >= len(it.segments) {
			it.done = true
			return nil, false, nil
		}

		seg := it.segments[it.segIdx]
		it.segIdx++

		var frames [][]byte
		walkErr := seg.ForEachFrame(func(_ int64, c []byte) error {
			frames = append(frames, c)
			return nil
		})
		if walkErr != nil {
			it.done = true
			it.err = walkErr
			return nil, false, walkErr
		}
		it.pending = frames
	}

	content = it.pending[0]
	it.pending = it.pending[1:]
	return content, true, nil
}

// Close drops the iterator's own buffered state. Segments remain owned
// by the SegmentSet and are unaffected.
func (it *RecordIterator) Close() error {
	it.done = true
	it.pending = nil
	return nil
}
