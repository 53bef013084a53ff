package ierrors

// ErrorCode categorizes a failure so callers can branch on it without
// parsing messages.
type ErrorCode string

const (
	// ErrorCodeIO wraps any underlying filesystem or I/O failure: open,
	// read, write, fsync, remove, mkdir.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidConfig marks a caller-supplied option that is
	// nonsensical (zero retention, zero segments-per-period, ...).
	ErrorCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// ErrorCodeEntryNotFound marks an EntryRef whose key hash, sequence
	// number, or offset no longer resolves to a segment on disk.
	ErrorCodeEntryNotFound ErrorCode = "ENTRY_NOT_FOUND"

	// ErrorCodeCorruptedData marks a signature mismatch or a short read
	// at a position where a complete frame or header was expected.
	ErrorCodeCorruptedData ErrorCode = "CORRUPTED_DATA"

	// ErrorCodeHeaderTooLarge marks a record header exceeding 65535 bytes.
	ErrorCodeHeaderTooLarge ErrorCode = "HEADER_TOO_LARGE"

	// ErrorCodeInternal is the fallback for anything that doesn't fit
	// the categories above.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)
