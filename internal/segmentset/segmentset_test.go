package segmentset

import (
	"os"
	"testing"
	"time"

	"github.com/nilotpal-labs/nanolog/internal/segment"
	"github.com/nilotpal-labs/nanolog/pkg/ierrors"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestAppend_RotatesWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	ss := New(dir, []byte("orders"), 0xabc, time.Hour, nil, testLogger())

	ref, err := ss.Append(nil, []byte("hello"), true, time.Now())
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref.KeyHash != 0xabc {
		t.Errorf("ref.KeyHash = %#x, want 0xabc", ref.KeyHash)
	}
	if ref.SequenceNumber != 0 {
		t.Errorf("ref.SequenceNumber = %d, want 0", ref.SequenceNumber)
	}
	if ss.SegmentCount() != 1 {
		t.Errorf("SegmentCount() = %d, want 1", ss.SegmentCount())
	}
}

func TestAppend_RotatesWhenActiveExpired(t *testing.T) {
	dir := t.TempDir()
	ss := New(dir, []byte("orders"), 0x1, time.Hour, nil, testLogger())

	past := time.Now().Add(-time.Hour)
	if _, err := ss.Append(nil, []byte("one"), true, past); err != nil {
		t.Fatal(err)
	}
	if ss.SegmentCount() != 1 {
		t.Fatalf("SegmentCount() = %d, want 1", ss.SegmentCount())
	}

	// The first segment's expiration was set relative to `past`, so it has
	// already expired by "now" and a second Append must rotate into a new
	// segment with sequence 1.
	ref, err := ss.Append(nil, []byte("two"), true, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if ref.SequenceNumber != 1 {
		t.Errorf("ref.SequenceNumber = %d, want 1", ref.SequenceNumber)
	}
	if ss.SegmentCount() != 2 {
		t.Errorf("SegmentCount() = %d, want 2", ss.SegmentCount())
	}
}

func TestReadAt_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ss := New(dir, []byte("orders"), 0x2, time.Hour, nil, testLogger())

	ref, err := ss.Append(nil, []byte("payload"), true, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	content, err := ss.ReadAt(ref.SequenceNumber, ref.Offset)
	if err != nil {
		t.Fatalf("ReadAt() error = %v", err)
	}
	if string(content) != "payload" {
		t.Errorf("ReadAt() = %q, want %q", content, "payload")
	}
}

func TestReadAt_UnknownSequence(t *testing.T) {
	dir := t.TempDir()
	ss := New(dir, []byte("orders"), 0x3, time.Hour, nil, testLogger())
	if _, err := ss.Append(nil, []byte("one"), true, time.Now()); err != nil {
		t.Fatal(err)
	}

	_, err := ss.ReadAt(99, 0)
	if !ierrors.IsNotFound(err) {
		t.Fatalf("ReadAt() error = %v, want NotFoundError", err)
	}
}

func TestEnumerate_AcrossSegments(t *testing.T) {
	dir := t.TempDir()
	ss := New(dir, []byte("orders"), 0x4, time.Hour, nil, testLogger())

	past := time.Now().Add(-time.Hour)
	if _, err := ss.Append(nil, []byte("a"), true, past); err != nil {
		t.Fatal(err)
	}
	if _, err := ss.Append(nil, []byte("b"), true, past); err != nil {
		t.Fatal(err)
	}
	// Force rotation for the third append.
	if _, err := ss.Append(nil, []byte("c"), true, time.Now()); err != nil {
		t.Fatal(err)
	}

	it := ss.Enumerate()
	defer it.Close()

	var got []string
	for {
		content, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !ok {
			break
		}
		got = append(got, string(content))
	}

	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("Enumerate() = %v, want [a b c]", got)
	}
}

func TestCompact_RemovesExpiredSealedSegmentsOnly(t *testing.T) {
	dir := t.TempDir()
	ss := New(dir, []byte("orders"), 0x5, time.Hour, nil, testLogger())

	past := time.Now().Add(-time.Hour)
	if _, err := ss.Append(nil, []byte("old"), true, past); err != nil {
		t.Fatal(err)
	}
	sealedPath := ss.segments[0].Path()

	// Rotate into an active segment that has not expired.
	if _, err := ss.Append(nil, []byte("new"), true, time.Now()); err != nil {
		t.Fatal(err)
	}

	removed, err := ss.Compact(time.Now())
	if err != nil {
		t.Fatalf("Compact() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Compact() removed = %d, want 1", removed)
	}
	if ss.SegmentCount() != 1 {
		t.Errorf("SegmentCount() after compact = %d, want 1", ss.SegmentCount())
	}
	if _, err := os.Stat(sealedPath); !os.IsNotExist(err) {
		t.Errorf("expected sealed segment file removed, stat err = %v", err)
	}
}

func TestCompact_NeverRemovesSoleActiveSegment(t *testing.T) {
	dir := t.TempDir()
	ss := New(dir, []byte("orders"), 0x6, time.Hour, nil, testLogger())

	past := time.Now().Add(-time.Hour)
	if _, err := ss.Append(nil, []byte("old"), true, past); err != nil {
		t.Fatal(err)
	}

	removed, err := ss.Compact(time.Now())
	if err != nil {
		t.Fatalf("Compact() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("Compact() removed = %d, want 0 (sole segment is active)", removed)
	}
	if ss.SegmentCount() != 1 {
		t.Errorf("SegmentCount() = %d, want 1", ss.SegmentCount())
	}
}

func TestNew_WithPreOpenedSegments(t *testing.T) {
	dir := t.TempDir()
	exp := time.Now().Add(time.Hour)
	seg, err := segment.Create(dir, FileName([]byte("k"), 0x7, 0), 0, exp, []byte("k"), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	ss := New(dir, []byte("k"), 0x7, time.Hour, []*segment.Segment{seg}, testLogger())
	if ss.SegmentCount() != 1 {
		t.Errorf("SegmentCount() = %d, want 1", ss.SegmentCount())
	}
}
