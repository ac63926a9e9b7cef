package describe

import "errors"

// Sentinel errors for the describe engine
var (
	// ErrUnsupportedDefaultExpression signals a default clause outside the
	// recognized literal grammar. It never escapes the normalizer: the
	// affected column degrades to an expression default and the describe
	// call carries on.
	ErrUnsupportedDefaultExpression = errors.New("unsupported default expression")

	// ErrCatalogScan indicates a catalog row could not be scanned into the
	// common row shape.
	ErrCatalogScan = errors.New("failed to scan catalog row")
)
