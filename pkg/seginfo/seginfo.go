// Package seginfo provides utilities for naming, parsing, and enumerating
// the sequential segment files a storage directory holds.
//
// Filename Format: prefix_id.txt
//
// Where:
//   - prefix: a configurable string identifying the file type (e.g., "store_file").
//   - id: a decimal, non-negative segment identifier with no leading zeros
//     (besides the lone digit "0").
//
// Example filenames:
//
//	store_file_0.txt
//	store_file_1.txt
//	store_file_42.txt
package seginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Name builds the filename for the segment identified by id, in the
// given prefix family.
func Name(id uint64, prefix string) string {
	return fmt.Sprintf("%s_%d.txt", prefix, id)
}

// Path builds the full path to the segment identified by id within
// dataDir/segmentDir.
func Path(dataDir, segmentDir, prefix string, id uint64) string {
	return filepath.Join(dataDir, segmentDir, Name(id, prefix))
}

// ParseID extracts the segment id from a filename that matches
// prefix_id.txt. It returns false if filename does not match the
// pattern for the given prefix, rather than an error — callers
// enumerating a directory should silently skip files that aren't
// segment files instead of failing the whole scan.
func ParseID(filename, prefix string) (uint64, bool) {
	if !strings.HasPrefix(filename, prefix+"_") || !strings.HasSuffix(filename, ".txt") {
		return 0, false
	}

	core := strings.TrimSuffix(strings.TrimPrefix(filename, prefix+"_"), ".txt")
	if core == "" {
		return 0, false
	}

	// Reject a stray "_" remaining inside core, e.g. a prefix that is
	// itself a prefix of another prefix ("store" vs "store_file").
	if strings.Contains(core, "_") {
		return 0, false
	}

	id, err := strconv.ParseUint(core, 10, 64)
	if err != nil {
		return 0, false
	}

	// Reject non-canonical zero-padded forms like "007" so that the
	// lone id<->filename mapping stays unambiguous.
	if strconv.FormatUint(id, 10) != core {
		return 0, false
	}

	return id, true
}

// Discover lists every segment id present under dataDir/segmentDir for
// the given prefix, in ascending order. Files that don't match the
// segment naming pattern are ignored. If the directory does not exist,
// Discover returns an empty slice and does not create it.
func Discover(dataDir, segmentDir, prefix string) ([]uint64, error) {
	dir := filepath.Join(dataDir, segmentDir)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read segment directory %s: %w", dir, err)
	}

	ids := make([]uint64, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := ParseID(entry.Name(), prefix); ok {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
