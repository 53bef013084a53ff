// Package ierrors implements nanolog's error taxonomy: a small hierarchy of
// structured error types that carry an ErrorCode plus domain-specific
// context, built around a shared baseError the same way a single error
// type grows specialized wrappers as a system's failure modes multiply.
package ierrors

// baseError is the foundation every domain error type embeds. It owns error
// chaining, a programmatic code, and a free-form details bag so callers can
// build rich diagnostics without inventing a new wire format per error.
type baseError struct {
	cause   error
	message string
	code    ErrorCode
	details map[string]any
}

// NewBaseError creates a new baseError wrapping the given cause.
func NewBaseError(err error, code ErrorCode, msg string) *baseError {
	return &baseError{cause: err, code: code, message: msg}
}

// WithMessage replaces the error message.
func (be *baseError) WithMessage(msg string) *baseError {
	be.message = msg
	return be
}

// WithCode sets the error code.
func (be *baseError) WithCode(code ErrorCode) *baseError {
	be.code = code
	return be
}

// WithDetail attaches a key/value pair of diagnostic context.
func (be *baseError) WithDetail(key string, value any) *baseError {
	if be.details == nil {
		be.details = make(map[string]any)
	}
	be.details[key] = value
	return be
}

// Error implements the error interface.
func (be *baseError) Error() string {
	if be.cause != nil {
		return be.message + ": " + be.cause.Error()
	}
	return be.message
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (be *baseError) Unwrap() error {
	return be.cause
}

// Code returns the error's classification code.
func (be *baseError) Code() ErrorCode {
	return be.code
}

// Details returns the attached diagnostic context.
func (be *baseError) Details() map[string]any {
	return be.details
}
