// Package catalog provides the in-memory hash table mapping a key's hash
// to its Segment Set. It is the entry point that boots an
// engine: scanning a data directory for existing segment files, grouping
// them by key, and recovering each key's SegmentSet into memory.
package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/nilotpal-labs/nanolog/internal/segment"
	"github.com/nilotpal-labs/nanolog/internal/segmentset"
	"github.com/nilotpal-labs/nanolog/pkg/ierrors"
	"go.uber.org/zap"
)

// Catalog is the root in-memory index: key hash to SegmentSet. It keeps
// every key's segment metadata in memory for O(1) lookup and no
// directory rescans on the hot path, but only each key's active segment
// holds an open file descriptor; sealed, historical segments are opened
// on demand per read and closed again immediately after.
//
// A hash bucket can hold more than one SegmentSet: hash collisions are
// differentiated by comparing the stored key bytes, so one SegmentSet
// per (hash, key-bytes) pair is kept rather than merging colliding keys
// into a single set.
type Catalog struct {
	dir      string
	lifetime time.Duration
	log      *zap.SugaredLogger

	mu      sync.RWMutex
	buckets map[uint64][]*segmentset.SegmentSet

	closed atomic.Bool
}

// Config carries the parameters needed to open a Catalog.
type Config struct {
	Dir      string
	Lifetime time.Duration
	Logger   *zap.SugaredLogger
}

// HashKey computes the partitioning hash for a key's raw bytes. Open and
// GetOrCreate both use it, and it is exported so callers needing to
// address a SegmentSet directly by hash (e.g. via SegmentSetByHash) use
// the exact same function.
func HashKey(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// Open scans dir for existing segment files, groups them by
// (key_hash, key_bytes), recovers each key's SegmentSet (the
// highest-sequence segment per key is reopened for write, recovering any
// partial tail; the rest are opened read-only), and returns a
// ready-to-use Catalog. A directory with no segment files yields an
// empty, valid Catalog.
func Open(cfg Config) (*Catalog, error) {
	if cfg.Dir == "" || cfg.Logger == nil {
		return nil, ierrors.NewConfigError("dir and logger are required to open a catalog").
			WithField("dir/logger")
	}

	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return nil, ierrors.ClassifyFileError(err, "read data directory", cfg.Dir)
	}

	type group struct {
		key  []byte
		segs []*segment.Segment
	}
	grouped := make(map[uint64][]*group)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}

		path := filepath.Join(cfg.Dir, entry.Name())
		seg, err := segment.OpenRead(path, cfg.Logger)
		if err != nil {
			cfg.Logger.Errorw("skipping unreadable segment file during catalog open",
				"path", path, "error", err)
			continue
		}

		hash := HashKey(seg.Key())
		groups := grouped[hash]

		found := false
		for _, g := range groups {
			if bytes.Equal(g.key, seg.Key()) {
				g.segs = append(g.segs, seg)
				found = true
				break
			}
		}
		if !found {
			grouped[hash] = append(groups, &group{key: seg.Key(), segs: []*segment.Segment{seg}})
		}
	}

	buckets := make(map[uint64][]*segmentset.SegmentSet, len(grouped))
	for hash, groups := range grouped {
		for _, g := range groups {
			sort.Slice(g.segs, func(i, j int) bool { return g.segs[i].Sequence() < g.segs[j].Sequence() })

			// Every non-last segment is sealed: g.segs already holds its
			// metadata from the scan above with no open descriptor, so it
			// is reused as-is rather than reopened a second time. Only
			// the highest-sequence segment is reopened, via
			// OpenForWrite, to become the one active, continuously-open
			// segment and to recover any crash-truncated tail.
			reopened := make([]*segment.Segment, len(g.segs))
			copy(reopened, g.segs)

			last := len(g.segs) - 1
			active, err := segment.OpenForWrite(g.segs[last].Path(), cfg.Logger)
			if err != nil {
				return nil, err
			}
			reopened[last] = active

			ss := segmentset.New(cfg.Dir, g.key, hash, cfg.Lifetime, reopened, cfg.Logger)
			buckets[hash] = append(buckets[hash], ss)
		}
	}

	keyCount := 0
	for _, b := range buckets {
		keyCount += len(b)
	}
	cfg.Logger.Infow("catalog opened", "dir", cfg.Dir, "keys", keyCount)

	return &Catalog{
		dir:      cfg.Dir,
		lifetime: cfg.Lifetime,
		log:      cfg.Logger,
		buckets:  buckets,
	}, nil
}

// GetOrCreate returns the SegmentSet for key, creating an empty one (with
// no segments yet) the first time this exact key is seen. A key whose
// hash collides with an already-known, different key gets its own
// SegmentSet in the same bucket rather than sharing one.
func (c *Catalog) GetOrCreate(key []byte) (*segmentset.SegmentSet, error) {
	if c.closed.Load() {
		return nil, ErrCatalogClosed
	}

	hash := HashKey(key)

	c.mu.RLock()
	for _, ss := range c.buckets[hash] {
		if bytes.Equal(ss.Key(), key) {
			c.mu.RUnlock()
			return ss, nil
		}
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ss := range c.buckets[hash] {
		if bytes.Equal(ss.Key(), key) {
			return ss, nil
		}
	}

	ss := segmentset.New(c.dir, key, hash, c.lifetime, nil, c.log)
	c.buckets[hash] = append(c.buckets[hash], ss)
	return ss, nil
}

// SegmentSetByHash returns a SegmentSet registered under hash. Because an
// EntryRef carries only the hash, a hash with more than one colliding key
// resolves to the first one registered — an ambiguity accepted in
// exchange for a compact EntryRef.
func (c *Catalog) SegmentSetByHash(hash uint64) (*segmentset.SegmentSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bucket := c.buckets[hash]
	if len(bucket) == 0 {
		return nil, false
	}
	return bucket[0], true
}

// EnumerateKeys invokes fn once per known key with its SegmentSet, in no
// particular order. It stops early and returns fn's error if fn returns
// one.
func (c *Catalog) EnumerateKeys(fn func(hash uint64, ss *segmentset.SegmentSet) error) error {
	c.mu.RLock()
	var all []*segmentset.SegmentSet
	for _, bucket := range c.buckets {
		all = append(all, bucket...)
	}
	c.mu.RUnlock()

	for _, ss := range all {
		if err := fn(ss.KeyHash(), ss); err != nil {
			return err
		}
	}
	return nil
}

// Compact runs retention-driven compaction across every key's SegmentSet,
// returning the total number of segment files removed.
func (c *Catalog) Compact(now time.Time) (int, error) {
	c.mu.RLock()
	var all []*segmentset.SegmentSet
	for _, bucket := range c.buckets {
		all = append(all, bucket...)
	}
	c.mu.RUnlock()

	total := 0
	for _, ss := range all {
		removed, err := ss.Compact(now)
		total += removed
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Sync fsyncs the active segment of every key, aggregating any failures.
func (c *Catalog) Sync() error {
	c.mu.RLock()
	var all []*segmentset.SegmentSet
	for _, bucket := range c.buckets {
		all = append(all, bucket...)
	}
	c.mu.RUnlock()

	var errs []error
	for _, ss := range all {
		if err := ss.Sync(); err != nil {
			errs = append(errs, err)
		}
	}
	return joinSyncErrors(errs)
}

// KeyCount returns the number of distinct keys currently tracked.
func (c *Catalog) KeyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, bucket := range c.buckets {
		n += len(bucket)
	}
	return n
}

// Close closes every SegmentSet's underlying file handles. The Catalog
// must not be used afterward.
func (c *Catalog) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrCatalogClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, bucket := range c.buckets {
		for _, ss := range bucket {
			if err := ss.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	c.buckets = nil

	return joinSyncErrors(errs)
}
