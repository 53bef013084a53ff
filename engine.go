// Package nanolog implements a compact, append-only, key-partitioned
// write-ahead log for embedding in single-process applications: event
// sourcing stores, message-broker partitions, audit logs, and similar
// systems. It persists opaque byte records under application-chosen
// keys, returns stable position references for random access, enforces
// time-based retention by periodic compaction, and survives process
// crashes with a bounded truncation window.
//
// The engine is single-owner: all operations mutate through the one
// Engine value, which is not safe for concurrent use and spawns no
// background goroutines. The catalog locks only its own key index, not
// the segments' writes, so callers wanting concurrent access must wrap
// the engine behind their own synchronization.
package nanolog

import (
	stdErrors "errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/nilotpal-labs/nanolog/internal/catalog"
	"github.com/nilotpal-labs/nanolog/internal/segmentset"
	"github.com/nilotpal-labs/nanolog/pkg/dirlock"
	"github.com/nilotpal-labs/nanolog/pkg/ierrors"
	"github.com/nilotpal-labs/nanolog/pkg/walopts"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrEngineClosed is returned by any Engine method invoked after Shutdown
// or Close.
var ErrEngineClosed = stdErrors.New("nanolog: operation failed, engine is closed")

// Engine is the public WAL façade: it owns the catalog and the resolved
// options, and implements append, durable log, random read, sequential
// enumeration, compaction, sync, and shutdown.
type Engine struct {
	dir     string
	options walopts.Options
	log     *zap.SugaredLogger
	catalog *catalog.Catalog
	lock    *dirlock.Lock
	closed  atomic.Bool
}

// BatchEntry is one record to append as part of an AppendBatch call.
type BatchEntry struct {
	Key     Key
	Header  []byte
	Content []byte
}

// New opens or creates a WAL engine rooted at dir. It validates opts
// (entry retention and segments-per-period must be positive), ensures
// dir exists, optionally acquires an advisory directory lock, and
// rebuilds the catalog from a directory scan.
func New(dir string, opts ...walopts.OptionFunc) (*Engine, error) {
	resolved := walopts.Resolve(opts...)
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, ierrors.ClassifyFileError(err, "create WAL directory", dir)
	}

	var lock *dirlock.Lock
	if resolved.LockDirectory {
		l, err := dirlock.Acquire(dir)
		if err != nil {
			return nil, err
		}
		lock = l
	}

	cat, err := catalog.Open(catalog.Config{
		Dir:      dir,
		Lifetime: resolved.SegmentLifetime(),
		Logger:   resolved.Logger,
	})
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	resolved.Logger.Infow("nanolog engine opened", "dir", dir,
		"entryRetention", resolved.EntryRetention, "segmentsPerPeriod", resolved.SegmentsPerPeriod)

	return &Engine{
		dir:     dir,
		options: resolved,
		log:     resolved.Logger,
		catalog: cat,
		lock:    lock,
	}, nil
}

func (e *Engine) checkOpen() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return nil
}

// AppendEntry writes one record under key, returning its EntryRef. If
// durable, the write is fsynced before returning.
func (e *Engine) AppendEntry(key Key, header, content []byte, durable bool) (EntryRef, error) {
	if err := e.checkOpen(); err != nil {
		return EntryRef{}, err
	}

	ss, err := e.catalog.GetOrCreate(key.Bytes())
	if err != nil {
		return EntryRef{}, err
	}

	return ss.Append(header, content, durable, time.Now())
}

// LogEntry is AppendEntry with durable always true.
func (e *Engine) LogEntry(key Key, header, content []byte) (EntryRef, error) {
	return e.AppendEntry(key, header, content, true)
}

// AppendBatch appends every entry in order, non-durably, then fsyncs
// exactly once every segment that received a write during the batch — in
// parallel via an errgroup — when durable is true, trading per-entry
// fsync latency for one fsync per touched segment regardless of batch
// size.
func (e *Engine) AppendBatch(entries []BatchEntry, durable bool) ([]EntryRef, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	refs := make([]EntryRef, len(entries))
	now := time.Now()
	touched := make(map[uint64]struct{})

	for i, entry := range entries {
		ss, err := e.catalog.GetOrCreate(entry.Key.Bytes())
		if err != nil {
			return nil, err
		}
		ref, err := ss.Append(entry.Header, entry.Content, false, now)
		if err != nil {
			return nil, err
		}
		refs[i] = ref
		touched[ref.KeyHash] = struct{}{}
	}

	if !durable || len(touched) == 0 {
		return refs, nil
	}

	// SegmentSetByHash resolves a touched hash to the first SegmentSet
	// registered in that bucket, so a key whose hash collides with
	// another key touched in the same durable batch would have only one
	// of the two fsynced here — the same documented ambiguity as the
	// read side (catalog.go), accepted for the same reason: an EntryRef
	// carries only the hash, never the full key.
	var group errgroup.Group
	for hash := range touched {
		hash := hash
		group.Go(func() error {
			ss, ok := e.catalog.SegmentSetByHash(hash)
			if !ok {
				return nil
			}
			return ss.Sync()
		})
	}
	if err := group.Wait(); err != nil {
		return refs, err
	}

	return refs, nil
}

// ReadEntryAt resolves ref to its content: catalog lookup by key hash,
// segment lookup by sequence number, frame decode at offset. Fails with
// EntryNotFound if either lookup fails, CorruptedData if the signature
// at the offset does not match.
func (e *Engine) ReadEntryAt(ref EntryRef) ([]byte, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	ss, ok := e.catalog.SegmentSetByHash(ref.KeyHash)
	if !ok {
		return nil, ierrors.NewNotFoundError("unknown key hash in EntryRef").
			WithKeyHash(ref.KeyHash).WithSequence(ref.SequenceNumber).WithOffset(ref.Offset)
	}

	return ss.ReadAt(ref.SequenceNumber, ref.Offset)
}

// EnumerateRecords returns a lazy iterator over every record appended
// under key, in append order. An unknown key yields an iterator that is
// immediately exhausted, not an error.
func (e *Engine) EnumerateRecords(key Key) (*RecordIterator, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	ss, err := e.catalog.GetOrCreate(key.Bytes())
	if err != nil {
		return nil, err
	}

	return &RecordIterator{inner: ss.Enumerate()}, nil
}

// EnumerateKeys invokes fn once with the printable form of every key
// that has at least one segment, in no particular order.
func (e *Engine) EnumerateKeys(fn func(key string) error) error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	return e.catalog.EnumerateKeys(func(_ uint64, ss *segmentset.SegmentSet) error {
		if ss.SegmentCount() == 0 {
			return nil
		}
		return fn(string(ss.Key()))
	})
}

// Compact removes every sealed, expired segment across every key,
// returning the total number of segment files removed. The active
// segment of a key is never removed, even if expired.
func (e *Engine) Compact() (int, error) {
	if err := e.checkOpen(); err != nil {
		return 0, err
	}
	return e.catalog.Compact(time.Now())
}

// Sync fsyncs the active segment of every key.
func (e *Engine) Sync() error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	return e.catalog.Sync()
}

// Close closes every open segment handle and releases the directory
// lock, leaving the WAL directory and its contents on disk. The Engine
// must not be used afterward. Use Shutdown instead when the destructive,
// directory-removing lifecycle end is wanted.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	err := e.catalog.Close()
	if lockErr := e.lock.Unlock(); lockErr != nil {
		err = multierr.Append(err, lockErr)
	}

	e.log.Infow("nanolog engine closed", "dir", e.dir)
	return err
}

// Shutdown closes every open segment handle, releases the directory
// lock, and removes the WAL directory tree. This is destructive and
// intentionally so — it is the lifecycle end for an engine whose
// directory should not outlive the process. The Engine must not be used
// afterward.
func (e *Engine) Shutdown() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	err := e.catalog.Close()
	if lockErr := e.lock.Unlock(); lockErr != nil {
		err = multierr.Append(err, lockErr)
	}
	if rmErr := os.RemoveAll(e.dir); rmErr != nil {
		err = multierr.Append(err, ierrors.NewIOError(rmErr, "failed to remove WAL directory").WithPath(e.dir))
	}

	e.log.Infow("nanolog engine shut down", "dir", e.dir)
	return err
}

// KeyStats summarizes one key's on-disk footprint.
type KeyStats struct {
	Key           string
	SegmentCount  int
	ActiveSeq     uint64
	ActiveExpires time.Time
}

// Stats returns per-key segment counts and active-segment metadata,
// a read-only introspection helper with no bearing on any invariant.
func (e *Engine) Stats() ([]KeyStats, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	var stats []KeyStats
	err := e.catalog.EnumerateKeys(func(_ uint64, ss *segmentset.SegmentSet) error {
		entry := KeyStats{
			Key:          string(ss.Key()),
			SegmentCount: ss.SegmentCount(),
		}
		if active := ss.Active(); active != nil {
			entry.ActiveSeq = active.Sequence()
			entry.ActiveExpires = active.Expiration()
		}
		stats = append(stats, entry)
		return nil
	})
	return stats, err
}
