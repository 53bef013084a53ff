package nanolog

import "github.com/nilotpal-labs/nanolog/internal/walref"

// EntryRef is the opaque position reference returned by every append:
// which key-hash partition, which segment sequence within it, and the
// byte offset of the frame inside that segment. It remains valid only
// while the referenced segment still exists on disk.
type EntryRef = walref.EntryRef
