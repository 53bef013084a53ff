// Package segment implements a single append-only segment file: the
// sealed file header plus the growable body of record frames. A Segment
// enforces the per-file invariants: every open segment begins with a
// valid file header, its write position always equals its file length,
// and no partial frame is ever observable before an fsync in durable
// mode.
//
// Only the active segment of a key holds an open file descriptor for its
// lifetime. A sealed (read-only, historical) Segment carries just its
// header metadata and write position; reads against it open the file on
// demand and close it again once done, per the engine's resource model.
package segment

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nilotpal-labs/nanolog/internal/codec"
	"github.com/nilotpal-labs/nanolog/pkg/ierrors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Segment is a typed wrapper over one segment file.
type Segment struct {
	path       string
	sequence   uint64
	expiration time.Time
	key        []byte
	file       *os.File
	writePos   int64
	log        *zap.SugaredLogger
}

// Path returns the segment's file path.
func (s *Segment) Path() string { return s.path }

// Sequence returns the segment's sequence number within its key.
func (s *Segment) Sequence() uint64 { return s.sequence }

// Expiration returns the instant at which the segment becomes eligible for
// compaction.
func (s *Segment) Expiration() time.Time { return s.expiration }

// Key returns the raw key bytes stored in the segment's file header.
func (s *Segment) Key() []byte { return s.key }

// WritePos returns the current write position — the size of the file.
func (s *Segment) WritePos() int64 { return s.writePos }

// IsExpired reports whether the segment's expiration instant has passed.
func (s *Segment) IsExpired(now time.Time) bool {
	return !s.expiration.After(now)
}

// Create makes a brand-new segment file at filepath.Join(dir, fileName),
// writes its file header, fsyncs the file and its parent directory, and
// returns a Segment ready to accept appends.
func Create(dir, fileName string, sequence uint64, expiration time.Time, key []byte, log *zap.SugaredLogger) (*Segment, error) {
	path := filepath.Join(dir, fileName)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, ierrors.ClassifyFileError(err, "create segment", path).(*ierrors.IOError).WithSequence(sequence)
	}

	header := codec.EncodeFileHeader(sequence, uint64(expiration.Unix()), key)
	if _, err := file.Write(header); err != nil {
		file.Close()
		os.Remove(path)
		return nil, ierrors.NewIOError(err, "failed to write segment file header").
			WithPath(path).WithSequence(sequence)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, ierrors.NewIOError(err, "failed to fsync new segment file").
			WithPath(path).WithSequence(sequence)
	}
	if err := fsyncDir(dir); err != nil {
		file.Close()
		return nil, ierrors.NewIOError(err, "failed to fsync segment directory").
			WithPath(dir).WithSequence(sequence)
	}

	log.Infow("created segment",
		"path", path, "sequence", sequence, "expiration", expiration, "headerSize", len(header))

	return &Segment{
		path:       path,
		sequence:   sequence,
		expiration: expiration,
		key:        key,
		file:       file,
		writePos:   int64(len(header)),
		log:        log,
	}, nil
}

// OpenRead validates a segment file's header and caches its metadata —
// sequence, expiration, key, write position — without keeping the file
// descriptor open. It is meant for sealed, historical segments: per the
// engine's resource model, a sealed segment's file is reopened on demand
// for each read and closed again immediately after, rather than held
// open for the engine's lifetime the way the active segment's is.
func OpenRead(path string, log *zap.SugaredLogger) (*Segment, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0o600)
	if err != nil {
		return nil, ierrors.ClassifyFileError(err, "open segment for read", path)
	}
	defer file.Close()

	sequence, expirationSecs, key, err := codec.DecodeFileHeader(file)
	if err != nil {
		if ce, ok := err.(*ierrors.CorruptionError); ok {
			return nil, ce.WithPath(path)
		}
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		return nil, ierrors.ClassifyFileError(err, "stat segment", path)
	}

	return &Segment{
		path:       path,
		sequence:   sequence,
		expiration: time.Unix(int64(expirationSecs), 0),
		key:        key,
		file:       nil,
		writePos:   info.Size(),
		log:        log,
	}, nil
}

// OpenForWrite reopens an existing segment file for appends, replaying its
// body to discover the true write position and truncating away any
// partial-tail frame left by a crash: at most one partial frame is lost
// per active segment per crash.
func OpenForWrite(path string, log *zap.SugaredLogger) (*Segment, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, ierrors.ClassifyFileError(err, "open segment for write", path)
	}

	sequence, expirationSecs, key, err := codec.DecodeFileHeader(file)
	if err != nil {
		file.Close()
		if ce, ok := err.(*ierrors.CorruptionError); ok {
			return nil, ce.WithPath(path)
		}
		return nil, err
	}

	headerEnd := codec.FileHeaderSize(len(key))
	validEnd, recovered, err := recoverWritePos(file, headerEnd)
	if err != nil {
		file.Close()
		return nil, err
	}

	if recovered {
		if err := file.Truncate(validEnd); err != nil {
			file.Close()
			return nil, ierrors.NewIOError(err, "failed to truncate partial tail frame").
				WithPath(path).WithSequence(sequence).WithOffset(uint64(validEnd))
		}
		log.Infow("truncated partial tail frame on recovery",
			"path", path, "sequence", sequence, "validEnd", validEnd)
	}

	return &Segment{
		path:       path,
		sequence:   sequence,
		expiration: time.Unix(int64(expirationSecs), 0),
		key:        key,
		file:       file,
		writePos:   validEnd,
		log:        log,
	}, nil
}

// AppendFrame encodes header and content into a record frame and writes it
// at the segment's current write position, advancing that position on
// success. It returns the byte offset at which the frame starts. If
// durable is true, the write is fsynced before returning.
//
// On any failure, writePos is left unchanged so the append is atomically
// all-or-nothing from the caller's perspective; any bytes that made it to
// disk are tolerated as a partial tail and cleaned up by the next
// OpenForWrite recovery pass.
func (s *Segment) AppendFrame(header, content []byte, durable bool) (int64, error) {
	frame, err := codec.EncodeFrame(header, content)
	if err != nil {
		return 0, err
	}

	offset := s.writePos
	if _, err := s.file.WriteAt(frame, offset); err != nil {
		return 0, ierrors.NewIOError(err, "failed to append record frame").
			WithPath(s.path).WithSequence(s.sequence).WithOffset(uint64(offset))
	}
	s.writePos = offset + int64(len(frame))

	if durable {
		if err := s.file.Sync(); err != nil {
			s.writePos = offset
			return 0, ierrors.NewIOError(err, "failed to fsync segment after append").
				WithPath(s.path).WithSequence(s.sequence).WithOffset(uint64(offset))
		}
	}

	return offset, nil
}

// Sync fsyncs the segment's file.
func (s *Segment) Sync() error {
	if err := s.file.Sync(); err != nil {
		return ierrors.NewIOError(err, "failed to fsync segment").
			WithPath(s.path).WithSequence(s.sequence)
	}
	return nil
}

// Seal closes the segment's open file handle, if any, transitioning it
// from an active, continuously-open segment to a sealed one whose file
// is reopened on demand for reads. Safe to call on an already-sealed
// segment.
func (s *Segment) Seal() error {
	if s.file == nil {
		return nil
	}
	file := s.file
	s.file = nil
	if err := file.Close(); err != nil {
		return ierrors.NewIOError(err, "failed to close segment file while sealing").
			WithPath(s.path).WithSequence(s.sequence)
	}
	return nil
}

// withReaderAt runs fn against a reader over the segment's file content.
// The active segment's already-open handle is reused directly; a sealed
// segment's file is opened read-only for the duration of fn and closed
// again before returning, so a sealed segment never holds a descriptor
// between reads.
func (s *Segment) withReaderAt(fn func(io.ReaderAt) error) error {
	if s.file != nil {
		return fn(s.file)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return ierrors.ClassifyFileError(err, "open sealed segment for read", s.path)
	}
	defer f.Close()
	return fn(f)
}

// ReadAt decodes the record frame starting at offset and returns its
// content.
func (s *Segment) ReadAt(offset int64) ([]byte, error) {
	var content []byte
	err := s.withReaderAt(func(r io.ReaderAt) error {
		c, _, decErr := codec.DecodeFrameAt(r, offset)
		content = c
		return decErr
	})
	return content, err
}

// ForEachFrame walks every complete frame in the segment body in order,
// starting just after the file header, invoking fn with each frame's
// offset and content. Iteration stops cleanly — without error — at the
// first undecodable tail, and propagates any error fn itself returns.
func (s *Segment) ForEachFrame(fn func(offset int64, content []byte) error) error {
	headerEnd := codec.FileHeaderSize(len(s.key))
	return s.withReaderAt(func(r io.ReaderAt) error {
		pos := headerEnd
		for {
			content, consumed, err := codec.DecodeFrameAt(r, pos)
			if err != nil {
				// Any undecodable tail — clean EOF, partial write, or a
				// corrupted frame boundary — ends iteration cleanly.
				return nil
			}
			if err := fn(pos, content); err != nil {
				return err
			}
			pos += consumed
		}
	})
}

// Close closes the segment's file handle, if one is currently open. A
// sealed segment (no persistent handle) is a no-op.
func (s *Segment) Close() error {
	if s.file == nil {
		return nil
	}
	if err := s.file.Close(); err != nil {
		return ierrors.NewIOError(err, "failed to close segment file").WithPath(s.path).WithSequence(s.sequence)
	}
	return nil
}

// recoverWritePos walks frames starting at startOffset and returns the
// offset just past the last fully-decodable frame, along with whether any
// trailing garbage was found past that point.
func recoverWritePos(file *os.File, startOffset int64) (validEnd int64, recovered bool, err error) {
	info, err := file.Stat()
	if err != nil {
		return 0, false, ierrors.NewIOError(err, "failed to stat segment during recovery")
	}

	pos := startOffset
	for pos < info.Size() {
		_, consumed, decodeErr := codec.DecodeFrameAt(file, pos)
		if decodeErr != nil {
			return pos, pos < info.Size(), nil
		}
		pos += consumed
	}
	return pos, false, nil
}

// fsyncDir fsyncs a directory's own metadata (the entry created inside it
// by a new segment file), which a plain file fsync does not cover.
func fsyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return unix.Fsync(int(d.Fd()))
}
