// Package engine provides the core database engine implementation for the Ignite storage system.
//
// The engine serves as the central coordinator and entry point for all database operations.
// It orchestrates the interaction between three main subsystems:
//   - Index: the in-memory key directory used for fast key lookups
//   - Storage: append-only segment file I/O
//   - Compaction: synchronous, inline reclamation of dead space
//
// The engine is explicitly single-threaded: it is not safe to call its
// methods from more than one goroutine concurrently, and it carries no
// internal synchronization to make that safe. A single *Engine value
// owns everything else — there is no other mutable global state.
package engine

import (
	stdErrors "errors"

	"github.com/iamNilotpal/ignitedb/internal/compaction"
	"github.com/iamNilotpal/ignitedb/internal/index"
	"github.com/iamNilotpal/ignitedb/internal/record"
	"github.com/iamNilotpal/ignitedb/internal/recovery"
	"github.com/iamNilotpal/ignitedb/internal/storage"
	"github.com/iamNilotpal/ignitedb/pkg/errors"
	"github.com/iamNilotpal/ignitedb/pkg/options"
	"go.uber.org/zap"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

	// ErrKeyNotFound is returned by Remove when the key has no live
	// entry. It is a plain sentinel, not a pkg/errors typed error:
	// a missing key on removal is an expected, caller-recoverable
	// outcome, not a fault that needs segment/offset diagnostic
	// context attached.
	ErrKeyNotFound = stdErrors.New("engine: key not found")
)

// Engine represents the main database engine that coordinates all subsystems.
// It acts as the primary interface for database operations and manages the lifecycle
// of all internal components.
type Engine struct {
	options    *options.Options   // options contains all configuration parameters for the engine and its subsystems.
	log        *zap.SugaredLogger // log provides structured logging capabilities throughout the engine.
	closed     bool               // closed tracks the engine's lifecycle state.
	index      *index.Index       // index manages the in-memory data structures for fast data access.
	storage    *storage.Storage   // storage handles all persistent data operations.
	compaction *compaction.Compaction
	deadBytes  int64 // deadBytes accumulates bytes held by overwritten/removed records since the last compaction.
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New creates and initializes a new Engine instance, recovering any
// existing on-disk state and opening a fresh active segment for
// subsequent writes.
func New(config *Config) (*Engine, error) {
	idx, err := index.New(&index.Config{DataDir: config.Options.DataDir, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	store, err := storage.New(&storage.Config{Logger: config.Logger, Options: config.Options})
	if err != nil {
		return nil, err
	}

	result, err := recovery.Recover(config.Logger, idx, store)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		options:    config.Options,
		log:        config.Logger,
		index:      idx,
		storage:    store,
		compaction: compaction.New(config.Logger),
		deadBytes:  result.DeadBytes,
	}

	// Recovery may have replayed a log whose dead bytes already exceed
	// the threshold (a reopen after a crash mid-compaction, or after a
	// session that never made another mutating call to re-trigger the
	// check). Compact now rather than leaving that space unreclaimed
	// until the next Set/Remove happens to cross the threshold again.
	if err := e.maybeCompact(); err != nil {
		return nil, err
	}

	return e, nil
}

// Get returns the value stored for key, and whether it was found.
func (e *Engine) Get(key string) (string, bool, error) {
	if e.closed {
		return "", false, ErrEngineClosed
	}

	entry, ok := e.index.Get(key)
	if !ok {
		return "", false, nil
	}

	rec, err := e.storage.ReadRecord(entry.SegmentID, entry.Offset, entry.Length)
	if err != nil {
		return "", false, err
	}
	if rec.Op != record.OpSet || string(rec.Key) != key {
		return "", false, storageCorruptError(entry.SegmentID, entry.Offset)
	}

	return string(rec.Value), true, nil
}

// Set stores value under key, overwriting any previous value.
func (e *Engine) Set(key, value string) error {
	if e.closed {
		return ErrEngineClosed
	}

	enc, err := record.Encode(record.OpSet, []byte(key), []byte(value))
	if err != nil {
		return err
	}

	offset, err := e.storage.Append(enc)
	if err != nil {
		return err
	}

	entry := index.Entry{SegmentID: e.storage.ActiveID(), Offset: offset, Length: int64(len(enc))}
	if prev, had := e.index.Set(key, entry); had {
		e.deadBytes += prev.Length
	}

	return e.maybeCompact()
}

// Remove deletes key. It returns ErrKeyNotFound if key has no live
// entry — and, per this engine's tombstone contract, writes nothing to
// the log in that case: a remove of an absent key is a no-op, not an
// append.
func (e *Engine) Remove(key string) error {
	if e.closed {
		return ErrEngineClosed
	}

	prevEntry, ok := e.index.Get(key)
	if !ok {
		return ErrKeyNotFound
	}

	enc, err := record.Encode(record.OpRemove, []byte(key), nil)
	if err != nil {
		return err
	}

	if _, err := e.storage.Append(enc); err != nil {
		return err
	}

	e.index.Delete(key)
	e.deadBytes += prevEntry.Length + int64(len(enc))

	return e.maybeCompact()
}

// maybeCompact triggers a synchronous compaction pass if accumulated
// dead bytes exceed the configured threshold. Compaction is always
// inline and never backgrounded — there is no worker goroutine to
// configure or shut down.
func (e *Engine) maybeCompact() error {
	if e.deadBytes <= e.options.CompactionThreshold {
		return nil
	}

	if _, err := e.compaction.Run(e.index, e.storage); err != nil {
		return err
	}

	e.deadBytes = 0
	return nil
}

// storageCorruptError reports an index entry that points at a record
// which, once decoded, doesn't match what the index expected to find
// there — a tombstone or a different key's record at that byte range.
func storageCorruptError(segmentID uint64, offset int64) error {
	return errors.NewStorageError(
		nil, errors.ErrorCodeSegmentCorrupted, "indexed record does not match expected key/op",
	).WithSegmentID(segmentID).WithOffset(offset)
}

// Close gracefully shuts down the engine and releases all associated resources.
func (e *Engine) Close() error {
	if e.closed {
		return ErrEngineClosed
	}
	e.closed = true

	if err := e.index.Close(); err != nil {
		return err
	}
	return e.storage.Close()
}
