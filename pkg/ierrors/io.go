package ierrors

// IOError wraps a filesystem or fsync failure with the segment location it
// happened at, so logs and callers can pinpoint exactly which file and
// offset were involved without re-deriving it from a generic os.PathError.
type IOError struct {
	*baseError
	path     string
	sequence uint64
	offset   uint64
}

// NewIOError creates a new IOError.
func NewIOError(err error, msg string) *IOError {
	return &IOError{baseError: NewBaseError(err, ErrorCodeIO, msg)}
}

// WithPath records the file path involved in the failure.
func (e *IOError) WithPath(path string) *IOError {
	e.path = path
	return e
}

// WithSequence records the segment sequence number involved.
func (e *IOError) WithSequence(seq uint64) *IOError {
	e.sequence = seq
	return e
}

// WithOffset records the byte offset involved.
func (e *IOError) WithOffset(offset uint64) *IOError {
	e.offset = offset
	return e
}

// Path returns the file path involved in the failure.
func (e *IOError) Path() string { return e.path }

// Sequence returns the segment sequence number involved.
func (e *IOError) Sequence() uint64 { return e.sequence }

// Offset returns the byte offset involved.
func (e *IOError) Offset() uint64 { return e.offset }
