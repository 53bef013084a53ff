package ierrors

// NotFoundError marks an EntryRef that no longer resolves to anything on
// disk, typically because its segment was compacted away.
type NotFoundError struct {
	*baseError
	keyHash  uint64
	sequence uint64
	offset   uint64
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{baseError: NewBaseError(nil, ErrorCodeEntryNotFound, msg)}
}

// WithKeyHash records the key hash that failed to resolve.
func (e *NotFoundError) WithKeyHash(hash uint64) *NotFoundError {
	e.keyHash = hash
	return e
}

// WithSequence records the segment sequence number that failed to resolve.
func (e *NotFoundError) WithSequence(seq uint64) *NotFoundError {
	e.sequence = seq
	return e
}

// WithOffset records the offset that failed to resolve.
func (e *NotFoundError) WithOffset(offset uint64) *NotFoundError {
	e.offset = offset
	return e
}

// KeyHash returns the key hash that failed to resolve.
func (e *NotFoundError) KeyHash() uint64 { return e.keyHash }

// Sequence returns the segment sequence number that failed to resolve.
func (e *NotFoundError) Sequence() uint64 { return e.sequence }

// Offset returns the offset that failed to resolve.
func (e *NotFoundError) Offset() uint64 { return e.offset }
