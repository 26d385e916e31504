package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iamNilotpal/ignitedb/internal/record"
	"github.com/iamNilotpal/ignitedb/pkg/options"
	"go.uber.org/zap"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()

	s, err := New(&Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSwitchActiveCreatesSegmentFile(t *testing.T) {
	s := newTestStorage(t)

	if err := s.SwitchActive(0); err != nil {
		t.Fatalf("SwitchActive(0) error = %v", err)
	}
	if s.ActiveID() != 0 {
		t.Errorf("ActiveID() = %d, want 0", s.ActiveID())
	}
	if s.ActiveOffset() != 0 {
		t.Errorf("ActiveOffset() = %d, want 0", s.ActiveOffset())
	}

	path := filepath.Join(
		s.options.DataDir, s.options.SegmentOptions.Directory,
		s.options.SegmentOptions.Prefix+"_0.txt",
	)
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected segment file at %s, stat error = %v", path, err)
	}
}

func TestAppendAndReadRecordRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	if err := s.SwitchActive(0); err != nil {
		t.Fatalf("SwitchActive(0) error = %v", err)
	}

	enc, err := record.Encode(record.OpSet, []byte("key"), []byte("value"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	offset, err := s.Append(enc)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if offset != 0 {
		t.Errorf("Append() offset = %d, want 0", offset)
	}

	rec, err := s.ReadRecord(0, offset, int64(len(enc)))
	if err != nil {
		t.Fatalf("ReadRecord() error = %v", err)
	}
	if rec.Op != record.OpSet || string(rec.Key) != "key" || string(rec.Value) != "value" {
		t.Errorf("got %+v", rec)
	}
}

func TestDiscoverListsSegmentsAscending(t *testing.T) {
	s := newTestStorage(t)
	for _, id := range []uint64{2, 0, 1} {
		if err := s.SwitchActive(id); err != nil {
			t.Fatalf("SwitchActive(%d) error = %v", id, err)
		}
	}

	ids, err := s.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	want := []uint64{0, 1, 2}
	if len(ids) != len(want) {
		t.Fatalf("Discover() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Discover()[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestDeleteSegmentRemovesFile(t *testing.T) {
	s := newTestStorage(t)
	if err := s.SwitchActive(0); err != nil {
		t.Fatalf("SwitchActive(0) error = %v", err)
	}
	if err := s.SwitchActive(1); err != nil {
		t.Fatalf("SwitchActive(1) error = %v", err)
	}

	if err := s.DeleteSegment(0); err != nil {
		t.Fatalf("DeleteSegment(0) error = %v", err)
	}

	path := filepath.Join(
		s.options.DataDir, s.options.SegmentOptions.Directory,
		s.options.SegmentOptions.Prefix+"_0.txt",
	)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected segment 0 to be removed, stat error = %v", err)
	}
}

func TestOpenAppendWriterWritesIndependentlyOfActive(t *testing.T) {
	s := newTestStorage(t)
	if err := s.SwitchActive(0); err != nil {
		t.Fatalf("SwitchActive(0) error = %v", err)
	}

	w, err := s.OpenAppendWriter(5)
	if err != nil {
		t.Fatalf("OpenAppendWriter() error = %v", err)
	}

	enc, err := record.Encode(record.OpSet, []byte("k"), []byte("v"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := w.Write(enc); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if s.ActiveID() != 0 {
		t.Errorf("writing segment 5 changed active id to %d", s.ActiveID())
	}

	rec, err := s.ReadRecord(5, 0, int64(len(enc)))
	if err != nil {
		t.Fatalf("ReadRecord(5) error = %v", err)
	}
	if string(rec.Key) != "k" {
		t.Errorf("got %+v", rec)
	}
}
