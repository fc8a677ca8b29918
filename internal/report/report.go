// Package report renders the end-of-run book summary.
package report

import (
	"fmt"
	"io"
	"time"

	"fxbook/internal/feed"
	"fxbook/internal/orderbook"
)

// Write renders run totals followed by one block per book, in the order
// given. Callers pass Registry.Books() to get lexical order.
func Write(w io.Writer, st feed.Stats, books []*orderbook.Book) error {
	if _, err := fmt.Fprintf(w, "processing completed: files=%d skipped=%d records=%d securities=%d\n",
		st.FilesProcessed, st.FilesSkipped, st.RecordsApplied, st.Securities); err != nil {
		return err
	}
	for _, b := range books {
		if err := writeBook(w, b); err != nil {
			return err
		}
	}
	return nil
}

func writeBook(w io.Writer, b *orderbook.Book) error {
	bid, offer, spread, last := "-", "-", "-", "-"
	if l, ok := b.BestBid(); ok {
		bid = fmt.Sprintf("%g x %g", l.Price, l.Qty)
	}
	if l, ok := b.BestOffer(); ok {
		offer = fmt.Sprintf("%g x %g", l.Price, l.Qty)
	}
	if s, ok := b.Spread(); ok {
		spread = fmt.Sprintf("%g", s)
	}
	if ts, ok := b.LastUpdate(); ok {
		last = ts.Format(time.RFC3339Nano)
	}
	_, err := fmt.Fprintf(w, "\n%s\n  best bid:    %s\n  best offer:  %s\n  spread:      %s\n  levels:      %d bid / %d offer\n  last update: %s\n",
		b.Security(), bid, offer, spread, b.BidLevels(), b.OfferLevels(), last)
	return err
}
