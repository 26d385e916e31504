// Package storage provides the file-based segment I/O layer: appending
// encoded records to the active segment, reading records back from any
// segment by id, and the raw file-handle primitives compaction needs to
// write a fresh, compacted segment.
//
// Storage owns no knowledge of which segment id should be active on
// startup — that decision belongs to recovery, which alone knows the
// rule that the active segment must always be a brand-new one, never a
// segment found on disk. Storage just bootstraps the data directory and
// exposes SwitchActive for recovery (and compaction) to call once that
// decision has been made.
package storage

import (
	"bytes"
	stdErrors "errors"
	"io"
	"os"
	"path/filepath"

	"github.com/iamNilotpal/ignitedb/internal/record"
	"github.com/iamNilotpal/ignitedb/pkg/errors"
	"github.com/iamNilotpal/ignitedb/pkg/filesys"
	"github.com/iamNilotpal/ignitedb/pkg/seginfo"
)

var (
	ErrSegmentClosed = stdErrors.New("operation failed: cannot access closed segment")
)

// New creates a Storage instance and bootstraps the segment directory.
// It does not open an active segment — call SwitchActive once recovery
// has determined which segment id should be active.
func New(config *Config) (*Storage, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Storage configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	config.Logger.Infow(
		"Initializing storage system",
		"dataDir", config.Options.DataDir,
		"segmentDir", config.Options.SegmentOptions.Directory,
		"segmentPrefix", config.Options.SegmentOptions.Prefix,
	)

	segmentDirPath := filepath.Join(config.Options.DataDir, config.Options.SegmentOptions.Directory)
	if err := filesys.CreateDir(segmentDirPath, 0755, true); err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeIO, "Failed to create segment directory",
		).WithPath(segmentDirPath).WithDetail("permission", "0755").WithDetail("forceCreate", true)
	}

	config.Logger.Infow("Segment directory created successfully", "path", segmentDirPath)

	return &Storage{
		log:         config.Logger,
		options:     config.Options,
		readHandles: make(map[uint64]*os.File),
	}, nil
}

// Discover enumerates every segment id present on disk, in ascending order.
func (s *Storage) Discover() ([]uint64, error) {
	ids, err := seginfo.Discover(
		s.options.DataDir,
		s.options.SegmentOptions.Directory,
		s.options.SegmentOptions.Prefix,
	)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to discover segments").
			WithPath(filepath.Join(s.options.DataDir, s.options.SegmentOptions.Directory))
	}
	return ids, nil
}

// SwitchActive closes the current active segment, if any, and opens id
// as the new active segment, creating the file if it does not exist.
// An existing file is opened with its contents kept, and the write
// cursor is positioned at the end of the file.
func (s *Storage) SwitchActive(id uint64) error {
	if s.activeSegment != nil {
		if err := s.activeSegment.Close(); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to close previous active segment").
				WithSegmentID(s.activeSegmentId)
		}
	}

	file, offset, err := s.openSegmentFile(id)
	if err != nil {
		return err
	}

	s.activeSegment = file
	s.activeSegmentId = id
	s.activeOffset = offset

	s.log.Infow("Switched active segment", "segmentID", id, "offset", offset)
	return nil
}

// ActiveID returns the id of the segment currently being appended to.
func (s *Storage) ActiveID() uint64 {
	return s.activeSegmentId
}

// ActiveOffset returns the current size, in bytes, of the active segment.
func (s *Storage) ActiveOffset() int64 {
	return s.activeOffset
}

// Append writes data to the active segment and returns the byte offset
// at which it began. The write loops until every byte is written or an
// error occurs — a short write is not treated as success. The active
// offset advances by the bytes actually written, including when the
// write fails part-way.
func (s *Storage) Append(data []byte) (int64, error) {
	if s.closed {
		return 0, ErrSegmentClosed
	}

	before := s.activeOffset
	written, err := s.writeFull(s.activeSegment, data)
	s.activeOffset += written
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to append record to active segment").
			WithSegmentID(s.activeSegmentId).
			WithOffset(before).
			WithFileName(seginfo.Name(s.activeSegmentId, s.options.SegmentOptions.Prefix))
	}

	return before, nil
}

// writeFull writes every byte of data to f, looping on partial writes
// until the buffer is exhausted or an error is returned, and reports
// how many bytes were written.
func (s *Storage) writeFull(f *os.File, data []byte) (int64, error) {
	var written int64
	for len(data) > 0 {
		n, err := f.Write(data)
		written += int64(n)
		if err != nil {
			return written, err
		}
		data = data[n:]
	}
	return written, nil
}

// ReadRecordBytes reads exactly length bytes starting at offset from
// segment segmentID, opening (and caching) a read-only handle for that
// segment if one isn't already open.
func (s *Storage) ReadRecordBytes(segmentID uint64, offset, length int64) ([]byte, error) {
	file, err := s.readHandleFor(segmentID)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, length)
	if _, err := file.ReadAt(buf, offset); err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to read record bytes").
			WithSegmentID(segmentID).
			WithOffset(offset)
	}
	return buf, nil
}

// ReadRecord reads and decodes the command record stored at
// [offset, offset+length) in segment segmentID.
func (s *Storage) ReadRecord(segmentID uint64, offset, length int64) (record.Record, error) {
	buf, err := s.ReadRecordBytes(segmentID, offset, length)
	if err != nil {
		return record.Record{}, err
	}

	dec := record.NewDecoder(bytes.NewReader(buf), offset)
	rec, _, _, err := dec.Next()
	if err != nil {
		return record.Record{}, errors.NewStorageError(err, errors.ErrorCodeSegmentCorrupted, "Failed to decode record").
			WithSegmentID(segmentID).
			WithOffset(offset)
	}
	return rec, nil
}

// OpenReadOnly opens a dedicated read-only *os.File for segmentID,
// positioned at the start, for a full sequential scan — used by
// recovery, which reads an entire segment start to finish rather than
// a single record at a known offset. The caller
// owns the returned handle and must close it.
func (s *Storage) OpenReadOnly(segmentID uint64) (*os.File, error) {
	path := seginfo.Path(s.options.DataDir, s.options.SegmentOptions.Directory, s.options.SegmentOptions.Prefix, segmentID)
	file, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	return file, nil
}

// readHandleFor returns a cached read-only handle for segmentID,
// opening one if necessary. The active segment's own write handle is
// reused directly, since os.File supports concurrent ReadAt/Write.
func (s *Storage) readHandleFor(segmentID uint64) (*os.File, error) {
	if segmentID == s.activeSegmentId && s.activeSegment != nil {
		return s.activeSegment, nil
	}

	if file, ok := s.readHandles[segmentID]; ok {
		return file, nil
	}

	path := seginfo.Path(s.options.DataDir, s.options.SegmentOptions.Directory, s.options.SegmentOptions.Prefix, segmentID)
	file, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	s.readHandles[segmentID] = file
	return file, nil
}

// DeleteSegment removes segmentID's file from disk, closing and
// discarding any cached read handle for it first.
func (s *Storage) DeleteSegment(segmentID uint64) error {
	if file, ok := s.readHandles[segmentID]; ok {
		file.Close()
		delete(s.readHandles, segmentID)
	}

	path := seginfo.Path(s.options.DataDir, s.options.SegmentOptions.Directory, s.options.SegmentOptions.Prefix, segmentID)
	if err := os.Remove(path); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to delete compacted segment").
			WithSegmentID(segmentID).
			WithPath(path)
	}
	return nil
}

// SegmentWriter is a handle to a non-active segment being written to
// directly, used by compaction to build a freshly merged segment file
// without disturbing the engine's active segment.
type SegmentWriter struct {
	file   *os.File
	offset int64
}

// OpenAppendWriter opens (creating if necessary) segmentID for
// sequential writing, independent of whichever segment is currently
// active.
func (s *Storage) OpenAppendWriter(segmentID uint64) (*SegmentWriter, error) {
	file, offset, err := s.openSegmentFile(segmentID)
	if err != nil {
		return nil, err
	}
	return &SegmentWriter{file: file, offset: offset}, nil
}

// Write appends data to the segment and returns the offset it was
// written at.
func (w *SegmentWriter) Write(data []byte) (int64, error) {
	before := w.offset
	for len(data) > 0 {
		n, err := w.file.Write(data)
		w.offset += int64(n)
		if err != nil {
			return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to write to segment")
		}
		data = data[n:]
	}
	return before, nil
}

// Close flushes the segment to stable storage and closes the handle.
// Compaction relies on this fsync: losing the merged segment after its
// source segments have already been deleted would be real data loss,
// unlike the engine's ordinary appends which only risk a reduced
// durability window.
func (w *SegmentWriter) Close() error {
	if err := w.file.Sync(); err != nil {
		return errors.ClassifySyncError(err, w.file.Name(), w.file.Name(), w.offset)
	}
	return w.file.Close()
}

// openSegmentFile opens (creating if necessary) segmentID for
// append-style writing and returns the handle along with its current
// size.
func (s *Storage) openSegmentFile(segmentID uint64) (*os.File, int64, error) {
	filename := seginfo.Name(segmentID, s.options.SegmentOptions.Prefix)
	filePath := filepath.Join(s.options.DataDir, s.options.SegmentOptions.Directory, filename)

	s.log.Infow("Opening segment file", "segmentID", segmentID, "filename", filename, "path", filePath)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, 0, errors.ClassifyFileOpenError(err, filePath, filename)
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		closeErr := file.Close()
		wrapped := errors.NewStorageError(err, errors.ErrorCodeIO, "Failed to seek to end of segment file").
			WithFileName(filename).
			WithPath(filePath)
		if closeErr != nil {
			return nil, 0, wrapped.WithDetail("closeError", closeErr.Error())
		}
		return nil, 0, wrapped
	}

	s.log.Infow("Segment file opened successfully", "path", filePath, "currentOffset", offset)
	return file, offset, nil
}

// Close closes the active segment and every cached read handle.
func (s *Storage) Close() error {
	if s.closed {
		return ErrSegmentClosed
	}
	s.closed = true

	var firstErr error
	if s.activeSegment != nil {
		if err := s.activeSegment.Close(); err != nil {
			firstErr = err
		}
	}
	for id, file := range s.readHandles {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.readHandles, id)
	}

	if firstErr != nil {
		return errors.NewStorageError(firstErr, errors.ErrorCodeIO, "Failed to close storage cleanly")
	}
	return nil
}
