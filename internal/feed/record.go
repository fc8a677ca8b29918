// Package feed reads depth snapshot files and applies them to per-security
// order books. A file is the unit of failure: any unreadable field aborts the
// whole file before it touches a book, and processing moves on to the next one.
package feed

import (
	"fmt"
	"time"

	"fxbook/internal/orderbook"
)

// Record is one fully typed snapshot row. Every field is coerced before a
// Record exists, so applying one can no longer fail halfway through.
type Record struct {
	Security string
	Time     time.Time

	BidPrices   [orderbook.SnapshotDepth]float64
	BidQtys     [orderbook.SnapshotDepth]float64
	OfferPrices [orderbook.SnapshotDepth]float64
	OfferQtys   [orderbook.SnapshotDepth]float64
}

// FieldError reports a missing or unparseable field in a snapshot row.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("field %s: bad value %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
