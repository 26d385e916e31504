// Package options provides data structures and functions for configuring
// the Ignite database. It defines various parameters that control Ignite's
// storage behavior and maintenance operations, such as directory paths and
// segment naming.
package options

import "strings"

// Defines configurable parameters for each segment.
// It provides fine-grained control over segment naming and placement.
type segmentOptions struct {
	// Specifies where segment files are stored.
	//
	// Default: "/var/lib/ignitedb/segments"
	Directory string `json:"directory"`

	// Defines the filename prefix for segment files.
	// Final filename will be: `prefix_id.txt`
	//
	// Default: "store_file"
	//
	// Example: If Prefix is "store_file", a segment file might be "store_file_3.txt".
	Prefix string `json:"prefix"`
}

// Defines the configuration parameters for Ignite DB.
// It provides control over storage and maintenance aspects.
type Options struct {
	// Specifies the base path where files will be stored.
	//
	// Default: "/var/lib/ignitedb"
	DataDir string `json:"dataDir"`

	// Defines the cumulative dead-byte count that, once exceeded after a
	// mutating operation, triggers a synchronous compaction pass. Lower
	// values compact more eagerly and keep the on-disk footprint closer
	// to the live data set at the cost of more frequent compaction work.
	//
	// Default: 1024
	CompactionThreshold int64 `json:"compactionThreshold"`

	// Configures segment management, i.e. directory and naming convention.
	SegmentOptions *segmentOptions `json:"segmentOptions"`
}

// OptionFunc is a function type that modifies the Ignite system's configuration.
type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.SegmentOptions = opts.SegmentOptions
		o.CompactionThreshold = opts.CompactionThreshold
	}
}

// Sets the primary data directory for Ignite.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets the dead-byte threshold that triggers synchronous compaction.
func WithCompactionThreshold(threshold int64) OptionFunc {
	return func(o *Options) {
		if threshold > 0 {
			o.CompactionThreshold = threshold
		}
	}
}

// Sets the directory specifically for storing segment files.
func WithSegmentDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentOptions.Directory = directory
		}
	}
}

// Sets the file name prefix for segment files.
func WithSegmentPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.SegmentOptions.Prefix = prefix
		}
	}
}
