package ierrors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return stdErrors.As(err, &nf)
}

// IsCorrupted reports whether err is, or wraps, a CorruptionError.
func IsCorrupted(err error) bool {
	var ce *CorruptionError
	return stdErrors.As(err, &ce)
}

// IsHeaderTooLarge reports whether err is, or wraps, a HeaderTooLargeError.
func IsHeaderTooLarge(err error) bool {
	var he *HeaderTooLargeError
	return stdErrors.As(err, &he)
}

// IsInvalidConfig reports whether err is, or wraps, a ConfigError.
func IsInvalidConfig(err error) bool {
	var ce *ConfigError
	return stdErrors.As(err, &ce)
}

// AsIOError extracts an *IOError from err's chain, if present.
func AsIOError(err error) (*IOError, bool) {
	var ioe *IOError
	if stdErrors.As(err, &ioe) {
		return ioe, true
	}
	return nil, false
}

// AsNotFoundError extracts a *NotFoundError from err's chain, if present.
func AsNotFoundError(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if stdErrors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

// Code extracts the ErrorCode from any error in the taxonomy, or
// ErrorCodeInternal for anything else. Useful for metrics and logging
// without a long type switch at every call site.
func Code(err error) ErrorCode {
	if ioe, ok := AsIOError(err); ok {
		return ioe.Code()
	}
	var ce *ConfigError
	if stdErrors.As(err, &ce) {
		return ce.Code()
	}
	var nf *NotFoundError
	if stdErrors.As(err, &nf) {
		return nf.Code()
	}
	var cre *CorruptionError
	if stdErrors.As(err, &cre) {
		return cre.Code()
	}
	var he *HeaderTooLargeError
	if stdErrors.As(err, &he) {
		return he.Code()
	}
	return ErrorCodeInternal
}

// ClassifyFileError inspects a failed file operation and wraps it in an
// IOError with as much context as the underlying syscall errno reveals.
// Shared across segment create/open/write/sync since nanolog's segment
// file operations all fail the same small set of ways.
func ClassifyFileError(err error, op, path string) error {
	if err == nil {
		return nil
	}

	if os.IsPermission(err) {
		return NewIOError(err, "permission denied during "+op).WithPath(path)
	}

	var pathErr *os.PathError
	if stdErrors.As(err, &pathErr) {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewIOError(err, "no space left on device during "+op).WithPath(path)
			case syscall.EROFS:
				return NewIOError(err, "filesystem is read-only during "+op).WithPath(path)
			case syscall.EIO:
				return NewIOError(err, "I/O error during "+op).WithPath(path)
			}
		}
	}

	return NewIOError(err, "failed during "+op).WithPath(path)
}
