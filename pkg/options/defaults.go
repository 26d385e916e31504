package options

const (
	// Specifies the default base directory where IgniteDB will store its data files.
	// If no other directory is specified during initialization, this path will be used.
	DefaultDataDir = "/var/lib/ignitedb"

	// Specifies the default target cumulative dead-byte count before a
	// mutating operation triggers synchronous compaction.
	DefaultCompactionThreshold int64 = 1024

	// Specifies the default subdirectory within the main data directory
	// where segment files will be stored.
	DefaultSegmentDirectory = "/segments"

	// Defines the default prefix for segment file names.
	// For example, a segment file might be named "store_file_3.txt".
	DefaultSegmentPrefix = "store_file"
)

// NewDefaultOptions returns a fresh Options value with the default
// settings for an IgniteDB instance. Each call allocates its own
// SegmentOptions so that distinct Options values — and therefore
// distinct engine instances — never alias the same segmentOptions
// struct; see WithSegmentDir and WithSegmentPrefix in options.go, which
// mutate through that pointer in place.
func NewDefaultOptions() Options {
	return Options{
		DataDir:             DefaultDataDir,
		CompactionThreshold: DefaultCompactionThreshold,
		SegmentOptions: &segmentOptions{
			Prefix:    DefaultSegmentPrefix,
			Directory: DefaultSegmentDirectory,
		},
	}
}
