// Package index provides the in-memory hash table implementation for the ignite key-value store.
// This package embodies the core Bitcask architectural principle: maintain all keys in memory
// with minimal metadata while storing actual values on disk for optimal memory utilization.
//
// The index enables O(1) key lookups through an in-memory hash table while keeping
// storage overhead minimal, at the cost of holding every live key in memory.
package index

import (
	stdErrors "errors"

	"github.com/iamNilotpal/ignitedb/pkg/errors"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates and initializes a new Index instance configured according to the
// provided parameters. The returned Index is immediately ready for use and
// includes a pre-allocated map capacity to absorb the common case without
// repeated growth.
func New(config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:     config.Logger,
		dataDir: config.DataDir,
		entries: make(map[string]*Entry, 2046),
	}, nil
}

// Get returns the location of key's live entry, if any.
func (idx *Index) Get(key string) (*Entry, bool) {
	e, ok := idx.entries[key]
	return e, ok
}

// Set records (or overwrites) the disk location of key, returning the
// entry it replaced, if any, so a caller can account for the bytes the
// old entry's record occupies (e.g. recovery's and the writer's
// dead-byte bookkeeping).
func (idx *Index) Set(key string, entry Entry) (prev Entry, hadPrev bool) {
	old, ok := idx.entries[key]
	idx.entries[key] = &entry
	if ok {
		return *old, true
	}
	return Entry{}, false
}

// Delete removes key's entry, if present, returning it so the caller
// can account for the bytes it freed (used by dead-byte bookkeeping
// during recovery and the writer).
func (idx *Index) Delete(key string) (*Entry, bool) {
	e, ok := idx.entries[key]
	if ok {
		delete(idx.entries, key)
	}
	return e, ok
}

// Len returns the number of live keys currently indexed.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Snapshot returns every live key and its entry, for use by the
// compactor, which needs to walk the full index while rewriting
// segments.
func (idx *Index) Snapshot() map[string]Entry {
	out := make(map[string]Entry, len(idx.entries))
	for k, v := range idx.entries {
		out[k] = *v
	}
	return out
}

// Reset clears every entry, used by recovery to rebuild the index
// from an empty state before replaying the segment log.
func (idx *Index) Reset() {
	clear(idx.entries)
}

// Close gracefully shuts down the Index, releasing the memory backing
// it. A second Close returns ErrIndexClosed; the other methods do not
// check whether the index has been closed.
func (idx *Index) Close() error {
	if idx.closed {
		return ErrIndexClosed
	}
	idx.closed = true

	idx.log.Infow("Closing index system")

	clear(idx.entries)
	idx.entries = nil

	idx.log.Infow("Index system closed successfully")
	return nil
}
