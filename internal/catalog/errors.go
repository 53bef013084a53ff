package catalog

import (
	stdErrors "errors"

	"go.uber.org/multierr"
)

// ErrCatalogClosed is returned by any Catalog method invoked after Close.
var ErrCatalogClosed = stdErrors.New("catalog: operation failed, catalog is closed")

// joinSyncErrors aggregates per-segment-set failures from a Sync or Close
// sweep into a single error, preserving every individual cause instead of
// reporting only the first one encountered.
func joinSyncErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return multierr.Combine(errs...)
}
