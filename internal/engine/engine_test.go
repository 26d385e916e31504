package engine

import (
	"testing"

	"github.com/iamNilotpal/ignitedb/pkg/options"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	opts.CompactionThreshold = 1024

	e, err := New(&Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestSetThenGet(t *testing.T) {
	e := newTestEngine(t)

	if err := e.Set("name", "Rob"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := e.Get("name")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || value != "Rob" {
		t.Errorf("Get() = %q, %v, want Rob, true", value, ok)
	}
}

func TestGetMissingKey(t *testing.T) {
	e := newTestEngine(t)

	_, ok, err := e.Get("missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Errorf("Get(missing) ok = true, want false")
	}
}

func TestOverwriteThenGetReturnsLatest(t *testing.T) {
	e := newTestEngine(t)

	if err := e.Set("k", "first"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := e.Set("k", "second"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := e.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get() = %q, %v, %v", value, ok, err)
	}
	if value != "second" {
		t.Errorf("Get() = %q, want second", value)
	}
}

func TestRemoveLiveKey(t *testing.T) {
	e := newTestEngine(t)

	if err := e.Set("k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := e.Remove("k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	_, ok, err := e.Get("k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Errorf("Get() found key after Remove")
	}
}

func TestRemoveMissingKeyReturnsErrKeyNotFound(t *testing.T) {
	e := newTestEngine(t)

	if err := e.Remove("nope"); err != ErrKeyNotFound {
		t.Errorf("Remove(nope) error = %v, want ErrKeyNotFound", err)
	}
}

func TestRemoveMissingKeyWritesNothing(t *testing.T) {
	e := newTestEngine(t)

	offsetBefore := e.storage.ActiveOffset()
	if err := e.Remove("nope"); err != ErrKeyNotFound {
		t.Fatalf("Remove(nope) error = %v, want ErrKeyNotFound", err)
	}
	if e.storage.ActiveOffset() != offsetBefore {
		t.Errorf("ActiveOffset() changed from %d to %d after removing an absent key", offsetBefore, e.storage.ActiveOffset())
	}
}

func TestCompactionTriggersAutomatically(t *testing.T) {
	e := newTestEngine(t)
	e.options.CompactionThreshold = 100

	for i := 0; i < 50; i++ {
		if err := e.Set("k", "some reasonably sized value to accumulate dead bytes"); err != nil {
			t.Fatalf("Set() #%d error = %v", i, err)
		}
	}

	value, ok, err := e.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get() after compaction = %q, %v, %v", value, ok, err)
	}
	if e.deadBytes != 0 {
		t.Errorf("deadBytes = %d, want 0 after compaction ran", e.deadBytes)
	}
}

func TestReopenCompactsWhenRecoveredDeadBytesExceedThreshold(t *testing.T) {
	dir := t.TempDir()
	opts := options.NewDefaultOptions()
	opts.DataDir = dir
	opts.CompactionThreshold = 1 << 30 // effectively unbounded: no compaction this session

	e1, err := New(&Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		if err := e1.Set("k", "some reasonably sized value to accumulate dead bytes"); err != nil {
			t.Fatalf("Set() #%d error = %v", i, err)
		}
	}
	if e1.deadBytes == 0 {
		t.Fatalf("expected dead bytes to accumulate before close")
	}
	if err := e1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopenOpts := options.NewDefaultOptions()
	reopenOpts.DataDir = dir
	reopenOpts.CompactionThreshold = 100 // recovered dead bytes must exceed this

	e2, err := New(&Config{Options: &reopenOpts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("reopen New() error = %v", err)
	}
	defer e2.Close()

	if e2.deadBytes != 0 {
		t.Errorf("deadBytes = %d, want 0 — New should compact on open when recovered dead bytes exceed the threshold", e2.deadBytes)
	}

	value, ok, err := e2.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get() after reopen = %q, %v, %v", value, ok, err)
	}
	if value != "some reasonably sized value to accumulate dead bytes" {
		t.Errorf("Get() = %q, want original value preserved across startup compaction", value)
	}
}

func TestReopenRecoversState(t *testing.T) {
	dir := t.TempDir()
	opts := options.NewDefaultOptions()
	opts.DataDir = dir

	e1, err := New(&Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e1.Set("k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := e1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	e2, err := New(&Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("reopen New() error = %v", err)
	}
	defer e2.Close()

	value, ok, err := e2.Get("k")
	if err != nil || !ok || value != "v" {
		t.Errorf("Get() after reopen = %q, %v, %v", value, ok, err)
	}
}
