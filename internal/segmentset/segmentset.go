// Package segmentset implements the per-key segment set: the ordered
// sequence of segments for one key, exactly one of which is active
// (writable) while the rest are sealed (read-only, historical). It owns
// rotation, random reads by sequence+offset, sequential enumeration, and
// retention-driven compaction.
package segmentset

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/nilotpal-labs/nanolog/internal/codec"
	"github.com/nilotpal-labs/nanolog/internal/segment"
	"github.com/nilotpal-labs/nanolog/internal/walref"
	"github.com/nilotpal-labs/nanolog/pkg/ierrors"
	"go.uber.org/zap"
)

// SegmentSet owns every segment file for a single key.
type SegmentSet struct {
	dir      string
	key      []byte
	keyHash  uint64
	lifetime time.Duration
	log      *zap.SugaredLogger

	// segments is sorted ascending by sequence number; the last element
	// is always the active segment.
	segments []*segment.Segment
}

// New constructs a SegmentSet from already-opened segments (as produced
// by a catalog directory scan), which must be sorted ascending by
// sequence number. Pass a nil/empty slice for a key seen for the first
// time.
func New(dir string, key []byte, keyHash uint64, lifetime time.Duration, segments []*segment.Segment, log *zap.SugaredLogger) *SegmentSet {
	return &SegmentSet{
		dir:      dir,
		key:      key,
		keyHash:  keyHash,
		lifetime: lifetime,
		log:      log,
		segments: segments,
	}
}

// Key returns the canonical key bytes this set belongs to.
func (ss *SegmentSet) Key() []byte { return ss.key }

// KeyHash returns the 64-bit hash partitioning this set on disk.
func (ss *SegmentSet) KeyHash() uint64 { return ss.keyHash }

// SegmentCount returns how many segments (active + sealed) currently
// exist for this key.
func (ss *SegmentSet) SegmentCount() int { return len(ss.segments) }

// active returns the current active segment, or nil if none exists yet.
func (ss *SegmentSet) active() *segment.Segment {
	if len(ss.segments) == 0 {
		return nil
	}
	return ss.segments[len(ss.segments)-1]
}

// Active returns the current active segment, or nil if this key has no
// segments yet.
func (ss *SegmentSet) Active() *segment.Segment {
	return ss.active()
}

// Append writes header/content as a new record frame, rotating into a
// fresh segment first if there is no active segment yet or the current
// one has expired. It returns the EntryRef identifying the written frame.
func (ss *SegmentSet) Append(header, content []byte, durable bool, now time.Time) (walref.EntryRef, error) {
	// Reject an oversize header before any rotation, so a rejected append
	// never creates a segment file.
	if len(header) > codec.MaxHeaderLength {
		return walref.EntryRef{}, ierrors.NewHeaderTooLargeError(len(header), codec.MaxHeaderLength)
	}

	active := ss.active()
	if active == nil || active.IsExpired(now) {
		var err error
		active, err = ss.rotate(now)
		if err != nil {
			return walref.EntryRef{}, err
		}
	}

	offset, err := active.AppendFrame(header, content, durable)
	if err != nil {
		return walref.EntryRef{}, err
	}

	return walref.EntryRef{
		KeyHash:        ss.keyHash,
		SequenceNumber: active.Sequence(),
		Offset:         uint64(offset),
	}, nil
}

// rotate seals the current active segment — closing its open file
// descriptor, since a sealed segment is opened on demand per read rather
// than held open — and creates a new one with sequence = prev + 1 and
// expiration = now + per-segment lifetime.
func (ss *SegmentSet) rotate(now time.Time) (*segment.Segment, error) {
	var nextSeq uint64
	if prev := ss.active(); prev != nil {
		nextSeq = prev.Sequence() + 1
		if err := prev.Seal(); err != nil {
			return nil, err
		}
	}

	expiration := now.Add(ss.lifetime)
	fileName := FileName(ss.key, ss.keyHash, nextSeq)

	seg, err := segment.Create(ss.dir, fileName, nextSeq, expiration, ss.key, ss.log)
	if err != nil {
		return nil, err
	}

	ss.segments = append(ss.segments, seg)
	ss.log.Infow("rotated segment", "keyHash", ss.keyHash, "sequence", nextSeq, "expiration", expiration)
	return seg, nil
}

// ReadAt decodes and returns the content of the frame at the given
// sequence number and byte offset.
func (ss *SegmentSet) ReadAt(sequence, offset uint64) ([]byte, error) {
	for _, seg := range ss.segments {
		if seg.Sequence() != sequence {
			continue
		}
		content, err := seg.ReadAt(int64(offset))
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, codec.ErrPartialFrame) {
				return nil, err
			}
			// A clean EOF or partial-tail read at a caller-supplied
			// offset is itself a corruption signal — valid EntryRefs
			// never point past the end of a well-formed frame.
			return nil, ierrors.NewCorruptionError("record frame unreadable at referenced offset").
				WithPath(seg.Path()).WithOffset(offset)
		}
		return content, nil
	}

	return nil, ierrors.NewNotFoundError("segment sequence not found for key").
		WithKeyHash(ss.keyHash).WithSequence(sequence).WithOffset(offset)
}

// Enumerate returns a lazy iterator over every frame's content across
// every segment, in ascending (sequence, offset) order.
func (ss *SegmentSet) Enumerate() *RecordIterator {
	segments := make([]*segment.Segment, len(ss.segments))
	copy(segments, ss.segments)
	return newRecordIterator(segments)
}

// Compact removes every sealed segment whose expiration has passed,
// leaving the active segment untouched even if it too has expired (it
// will be sealed by the next Append's rotation instead). It returns the
// number of segment files removed.
func (ss *SegmentSet) Compact(now time.Time) (int, error) {
	if len(ss.segments) <= 1 {
		return 0, nil
	}

	kept := make([]*segment.Segment, 0, len(ss.segments))
	removed := 0

	for i, seg := range ss.segments {
		isActive := i == len(ss.segments)-1
		if !isActive && seg.IsExpired(now) {
			path := seg.Path()
			if err := seg.Close(); err != nil {
				return removed, err
			}
			if err := removeFile(path); err != nil {
				return removed, err
			}
			removed++
			ss.log.Infow("compacted segment", "keyHash", ss.keyHash, "sequence", seg.Sequence(), "path", path)
			continue
		}
		kept = append(kept, seg)
	}

	ss.segments = kept
	return removed, nil
}

// Sync fsyncs the active segment, if one exists.
func (ss *SegmentSet) Sync() error {
	if active := ss.active(); active != nil {
		return active.Sync()
	}
	return nil
}

// Close closes every segment's file handle.
func (ss *SegmentSet) Close() error {
	for _, seg := range ss.segments {
		if err := seg.Close(); err != nil {
			return err
		}
	}
	return nil
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil {
		return ierrors.ClassifyFileError(err, "remove expired segment", path)
	}
	return nil
}
