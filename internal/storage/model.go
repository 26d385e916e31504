package storage

import (
	"os"

	"github.com/iamNilotpal/ignitedb/pkg/options"
	"go.uber.org/zap"
)

// Storage represents the core file-based storage component responsible
// for segment file I/O: appending to the active segment, and reading
// back records from any segment by id.
//
// Storage carries no mutex: it is a single-threaded component, matching
// the engine built on top of it — see internal/index's equivalent note.
type Storage struct {
	activeSegmentId uint64             // Identifier of the segment currently being appended to.
	activeOffset    int64              // Current size/write offset of the active segment.
	activeSegment   *os.File           // Open handle for the active segment.
	readHandles     map[uint64]*os.File // Cached read-only handles, keyed by segment id.
	closed          bool               // Whether the storage has been closed.
	options         *options.Options   // Configuration parameters controlling storage behavior.
	log             *zap.SugaredLogger // Structured logger for operational visibility and debugging.
}

// Config encapsulates all the configuration parameters required to initialize a Storage instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}
