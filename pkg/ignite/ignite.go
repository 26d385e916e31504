// Package ignite provides an embeddable key/value data store designed
// for fast read and write operations, inspired by Bitcask. It combines
// an in-memory key directory (internal/index) with an append-only log
// structure on disk (internal/storage) to achieve high throughput. It
// is a single-process, single-threaded library: not safe for
// concurrent use, and not meant to be shared across multiple
// processes pointed at the same data directory.
package ignite

import (
	"github.com/iamNilotpal/ignitedb/internal/engine"
	"github.com/iamNilotpal/ignitedb/pkg/logger"
	"github.com/iamNilotpal/ignitedb/pkg/options"
)

// ErrKeyNotFound is returned by Remove when the key has no live entry.
var ErrKeyNotFound = engine.ErrKeyNotFound

// DB is an open handle to an Ignite store. It encapsulates the core
// engine responsible for data handling and the configuration options
// applied to this instance.
type DB struct {
	engine  *engine.Engine   // The underlying database engine handling read/write operations.
	options *options.Options // Configuration options applied to this DB instance.
}

// Open creates (if necessary) and opens an Ignite store rooted at
// dataDir, recovering any existing on-disk state.
func Open(dataDir string, opts ...options.OptionFunc) (*DB, error) {
	log := logger.New("ignitedb")

	defaultOpts := options.NewDefaultOptions()
	defaultOpts.DataDir = dataDir
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	eng, err := engine.New(&engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &DB{engine: eng, options: &defaultOpts}, nil
}

// Get retrieves the value associated with key. ok is false if key has
// no live entry.
func (db *DB) Get(key string) (value string, ok bool, err error) {
	return db.engine.Get(key)
}

// Set stores value under key. If key already exists, its value is
// overwritten. The operation is durable to at least the kernel buffer
// cache and is written to the append-only log.
func (db *DB) Set(key, value string) error {
	return db.engine.Set(key, value)
}

// Remove deletes key. It returns ErrKeyNotFound (checkable with
// errors.Is) if key has no live entry, in which case nothing is
// written to the log.
func (db *DB) Remove(key string) error {
	return db.engine.Remove(key)
}

// Close gracefully shuts down the DB, releasing all associated
// resources.
func (db *DB) Close() error {
	return db.engine.Close()
}
