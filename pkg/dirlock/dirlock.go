// Package dirlock provides an advisory, process-exclusive lock over a WAL
// directory, using flock(2) via golang.org/x/sys/unix. It exists to close
// the open design question in nanolog's format notes: two engines opening
// the same directory is undefined behavior, and "a directory lockfile is
// a reasonable addition" — this is that addition.
package dirlock

import (
	"os"
	"path/filepath"

	"github.com/nilotpal-labs/nanolog/pkg/ierrors"
	"golang.org/x/sys/unix"
)

// lockFileName is the advisory lockfile created inside the WAL directory.
const lockFileName = ".nanolog.lock"

// Lock holds an exclusive, non-blocking flock on a directory's lockfile.
// It is released by Unlock, which also closes the underlying descriptor.
type Lock struct {
	file *os.File
	path string
}

// Acquire opens (creating if necessary) the lockfile inside dir and takes
// a non-blocking exclusive flock on it. It fails immediately, rather than
// blocking, if another process already holds the lock.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, lockFileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, ierrors.ClassifyFileError(err, "open directory lockfile", path)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, ierrors.NewIOError(err, "directory is already locked by another nanolog engine").
			WithPath(path)
	}

	return &Lock{file: f, path: path}, nil
}

// Unlock releases the flock and closes the lockfile descriptor. It does
// not remove the lockfile, so a subsequent Acquire in the same directory
// reuses it.
func (l *Lock) Unlock() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		return ierrors.NewIOError(err, "failed to release directory lock").WithPath(l.path)
	}
	return l.file.Close()
}
