package ierrors

// HeaderTooLargeError marks a record header exceeding the 65535-byte limit
// the frame's 2-byte length field can encode.
type HeaderTooLargeError struct {
	*baseError
	headerLength int
	maxLength    int
}

// NewHeaderTooLargeError creates a new HeaderTooLargeError.
func NewHeaderTooLargeError(headerLength, maxLength int) *HeaderTooLargeError {
	return &HeaderTooLargeError{
		baseError:    NewBaseError(nil, ErrorCodeHeaderTooLarge, "record header exceeds maximum size"),
		headerLength: headerLength,
		maxLength:    maxLength,
	}
}

// HeaderLength returns the size of the header that was rejected.
func (e *HeaderTooLargeError) HeaderLength() int { return e.headerLength }

// MaxLength returns the maximum header size the format allows.
func (e *HeaderTooLargeError) MaxLength() int { return e.maxLength }
