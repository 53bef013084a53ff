package catalog

import (
	"testing"
	"time"

	"github.com/nilotpal-labs/nanolog/internal/segmentset"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestOpen_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(Config{Dir: dir, Lifetime: time.Hour, Logger: testLogger()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	if c.KeyCount() != 0 {
		t.Errorf("KeyCount() = %d, want 0", c.KeyCount())
	}
}

func TestGetOrCreate_PersistsAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(Config{Dir: dir, Lifetime: time.Hour, Logger: testLogger()})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ss1, err := c.GetOrCreate([]byte("orders"))
	if err != nil {
		t.Fatal(err)
	}
	ss2, err := c.GetOrCreate([]byte("orders"))
	if err != nil {
		t.Fatal(err)
	}
	if ss1 != ss2 {
		t.Error("GetOrCreate() returned distinct SegmentSets for the same key")
	}
	if c.KeyCount() != 1 {
		t.Errorf("KeyCount() = %d, want 1", c.KeyCount())
	}
}

func TestOpen_RecoversExistingSegmentsGroupedByKey(t *testing.T) {
	dir := t.TempDir()

	c1, err := Open(Config{Dir: dir, Lifetime: time.Hour, Logger: testLogger()})
	if err != nil {
		t.Fatal(err)
	}

	ordersSS, err := c1.GetOrCreate([]byte("orders"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ordersSS.Append(nil, []byte("one"), true, time.Now()); err != nil {
		t.Fatal(err)
	}

	usersSS, err := c1.GetOrCreate([]byte("users"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := usersSS.Append(nil, []byte("alice"), true, time.Now()); err != nil {
		t.Fatal(err)
	}

	if err := c1.Close(); err != nil {
		t.Fatal(err)
	}

	c2, err := Open(Config{Dir: dir, Lifetime: time.Hour, Logger: testLogger()})
	if err != nil {
		t.Fatalf("reopen Open() error = %v", err)
	}
	defer c2.Close()

	if c2.KeyCount() != 2 {
		t.Fatalf("KeyCount() after reopen = %d, want 2", c2.KeyCount())
	}

	hash := HashKey([]byte("orders"))
	ss, ok := c2.SegmentSetByHash(hash)
	if !ok {
		t.Fatal("expected orders SegmentSet to be recovered")
	}
	if ss.SegmentCount() != 1 {
		t.Errorf("SegmentCount() = %d, want 1", ss.SegmentCount())
	}
}

func TestClose_RejectsFurtherUse(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(Config{Dir: dir, Lifetime: time.Hour, Logger: testLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := c.GetOrCreate([]byte("orders")); err != ErrCatalogClosed {
		t.Errorf("GetOrCreate() after close error = %v, want ErrCatalogClosed", err)
	}
	if err := c.Close(); err != ErrCatalogClosed {
		t.Errorf("second Close() error = %v, want ErrCatalogClosed", err)
	}
}

func TestEnumerateKeys_VisitsEveryKey(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(Config{Dir: dir, Lifetime: time.Hour, Logger: testLogger()})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	for _, k := range []string{"a", "b", "c"} {
		if _, err := c.GetOrCreate([]byte(k)); err != nil {
			t.Fatal(err)
		}
	}

	seen := make(map[uint64]bool)
	err = c.EnumerateKeys(func(hash uint64, ss *segmentset.SegmentSet) error {
		seen[hash] = true
		if ss == nil {
			t.Error("EnumerateKeys() passed nil SegmentSet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("EnumerateKeys() error = %v", err)
	}
	if len(seen) != 3 {
		t.Errorf("EnumerateKeys() visited %d keys, want 3", len(seen))
	}
}
