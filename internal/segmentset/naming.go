package segmentset

import (
	"fmt"
	"strings"
)

// FileName builds the on-disk filename for a segment:
// "{sanitized_key}-{key_hash_hex}-{sequence:04}.log". The filename is
// advisory only — the file header inside is the source of truth — but a
// human-readable name makes a directory listing legible during debugging.
func FileName(key []byte, keyHash uint64, sequence uint64) string {
	return fmt.Sprintf("%s-%x-%04d.log", Sanitize(string(key)), keyHash, sequence)
}

// Sanitize replaces every byte outside [A-Za-z0-9_-] with an underscore,
// so arbitrary key bytes can never produce a path traversal or an invalid
// filename.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
