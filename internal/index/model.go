package index

import (
	"go.uber.org/zap"
)

// Entry contains the absolute minimum metadata required to locate a
// live data entry on disk: which segment it lives in, and the byte
// range within that segment the record occupies.
//
// There is no Timestamp field here: the index is never asked to pick
// between two versions of a key by wall-clock time. Ascending segment
// id, and append order within a segment, already totally order every
// write the engine has ever made, so the last record replayed during
// recovery — scanning segments in ascending id order — is always the
// correct one to keep.
type Entry struct {
	// SegmentID identifies which segment file contains this entry.
	SegmentID uint64

	// Offset is the absolute byte position within the segment file
	// where the encoded record begins.
	Offset int64

	// Length is the number of bytes the encoded record occupies,
	// letting a read be satisfied with a single bounded read call.
	Length int64
}

// Index is the in-memory hash table mapping keys to their on-disk
// location. It holds no disk state of its own — it is rebuilt from
// scratch on every Open by replaying the segment log.
//
// Index carries no mutex: the engine built on top of it is explicitly
// single-threaded and not safe for concurrent use from multiple
// goroutines, so adding synchronization here would misrepresent that
// contract rather than honor it.
type Index struct {
	dataDir string             // Filesystem directory containing segment files.
	log     *zap.SugaredLogger // Structured logging.
	entries map[string]*Entry  // Core mapping from key to disk location.
	closed  bool               // Whether the index has been closed.
}

// Config encapsulates the configuration parameters required to initialize an Index.
type Config struct {
	DataDir string             // Specifies the filesystem directory containing segment files.
	Logger  *zap.SugaredLogger // Provides structured logging capabilities for Index operations.
}
