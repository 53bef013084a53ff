package ierrors

// CorruptionError marks a signature mismatch or a short read at a position
// where a complete frame or header was expected.
type CorruptionError struct {
	*baseError
	path          string
	offset        uint64
	expectedMagic string
	gotMagic      string
}

// NewCorruptionError creates a new CorruptionError.
func NewCorruptionError(msg string) *CorruptionError {
	return &CorruptionError{baseError: NewBaseError(nil, ErrorCodeCorruptedData, msg)}
}

// WithPath records the segment file path involved.
func (e *CorruptionError) WithPath(path string) *CorruptionError {
	e.path = path
	return e
}

// WithOffset records the byte offset where corruption was detected.
func (e *CorruptionError) WithOffset(offset uint64) *CorruptionError {
	e.offset = offset
	return e
}

// WithMagic records the expected and actual magic bytes, as strings for
// readability in logs and error messages.
func (e *CorruptionError) WithMagic(expected, got string) *CorruptionError {
	e.expectedMagic = expected
	e.gotMagic = got
	return e
}

// Path returns the segment file path involved.
func (e *CorruptionError) Path() string { return e.path }

// Offset returns the byte offset where corruption was detected.
func (e *CorruptionError) Offset() uint64 { return e.offset }

// ExpectedMagic returns the magic bytes that should have been present.
func (e *CorruptionError) ExpectedMagic() string { return e.expectedMagic }

// GotMagic returns the magic bytes that were actually read.
func (e *CorruptionError) GotMagic() string { return e.gotMagic }
