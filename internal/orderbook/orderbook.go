// Package orderbook maintains per-security depth aggregated from
// periodic top-of-book snapshots: price-keyed levels per side, best
// bid/offer and spread queries.
package orderbook

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/btree"
)

// SnapshotDepth is the number of levels per side carried by one feed snapshot.
const SnapshotDepth = 5

const levelsDegree = 32

// Level is resting liquidity at a single price.
type Level struct{ Price, Qty float64 }

// side is one half of a book: an ordered price→quantity mapping. Bids
// order descending, offers ascending, so the tree minimum is always the
// best of book.
type side struct {
	levels *btree.BTreeG[Level]
}

func newSide(less func(a, b Level) bool) *side {
	return &side{levels: btree.NewG(levelsDegree, less)}
}

// applyUpdate reconciles one snapshot batch against the side. Prices and
// quantities pair up by index; a shorter slice truncates the pairing.
// Prices compare to zero exactly: the feed uses 0.0 literally, never
// near-zero noise.
func (s *side) applyUpdate(prices, quantities []float64) {
	// Every price at exactly 0 means the snapshot reports no change for
	// this side, which is different from reporting an empty side.
	allZero := true
	for _, p := range prices {
		if p != 0.0 {
			allZero = false
			break
		}
	}
	if allZero {
		return
	}

	n := len(prices)
	if len(quantities) < n {
		n = len(quantities)
	}
	for i := 0; i < n; i++ {
		p, q := prices[i], quantities[i]
		switch {
		case p > 0 && q > 0:
			s.levels.ReplaceOrInsert(Level{Price: p, Qty: q})
		case p > 0 && q == 0:
			// Explicit deletion signal; deleting an absent price is not an error.
			s.levels.Delete(Level{Price: p})
		}
		// A zero price never creates, updates, or deletes a level,
		// whatever the paired quantity says. Negative noise is skipped too.
	}
}

func (s *side) best() (Level, bool) { return s.levels.Min() }

func (s *side) count() int { return s.levels.Len() }

func (s *side) snapshot() []Level {
	out := make([]Level, 0, s.levels.Len())
	s.levels.Ascend(func(l Level) bool {
		out = append(out, l)
		return true
	})
	return out
}

// Book is the aggregated depth view for one security. Writes come from a
// single feed applier; the RWMutex gives any concurrent reader (report,
// status endpoint) a consistent snapshot.
type Book struct {
	security string

	mu         sync.RWMutex
	bids       *side
	offers     *side
	lastUpdate time.Time
}

// New returns an empty book for the given security.
func New(security string) *Book {
	return &Book{
		security: security,
		bids:     newSide(func(a, b Level) bool { return a.Price > b.Price }),
		offers:   newSide(func(a, b Level) bool { return a.Price < b.Price }),
	}
}

func (b *Book) Security() string { return b.security }

// ApplyBidUpdate applies one snapshot batch to the bid side.
func (b *Book) ApplyBidUpdate(prices, quantities []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bids.applyUpdate(prices, quantities)
}

// ApplyOfferUpdate applies one snapshot batch to the offer side.
func (b *Book) ApplyOfferUpdate(prices, quantities []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offers.applyUpdate(prices, quantities)
}

// BestBid returns the highest bid level, if any.
func (b *Book) BestBid() (Level, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.best()
}

// BestOffer returns the lowest offer level, if any.
func (b *Book) BestOffer() (Level, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offers.best()
}

// Spread returns best offer price minus best bid price. ok is false until
// both sides hold at least one level.
func (b *Book) Spread() (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bid, okBid := b.bids.best()
	offer, okOffer := b.offers.best()
	if !okBid || !okOffer {
		return 0, false
	}
	return offer.Price - bid.Price, true
}

func (b *Book) BidLevels() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.count()
}

func (b *Book) OfferLevels() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offers.count()
}

// Bids returns the bid levels best-first (descending price).
func (b *Book) Bids() []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.snapshot()
}

// Offers returns the offer levels best-first (ascending price).
func (b *Book) Offers() []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offers.snapshot()
}

// SetLastUpdate records the timestamp of the snapshot most recently
// applied to this book. The applier calls it unconditionally, even when
// both side updates carried no change.
func (b *Book) SetLastUpdate(t time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastUpdate = t
}

// LastUpdate reports when the book last received a snapshot; ok is false
// if it never has.
func (b *Book) LastUpdate() (time.Time, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUpdate, !b.lastUpdate.IsZero()
}

// String is a diagnostic one-liner, not a wire format.
func (b *Book) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	fmtSide := func(l Level, ok bool) string {
		if !ok {
			return "-"
		}
		return fmt.Sprintf("%gx%g", l.Price, l.Qty)
	}
	bid, okBid := b.bids.best()
	offer, okOffer := b.offers.best()
	spread := "-"
	if okBid && okOffer {
		spread = fmt.Sprintf("%g", offer.Price-bid.Price)
	}
	return fmt.Sprintf("Book(%s bid=%s offer=%s spread=%s)",
		b.security, fmtSide(bid, okBid), fmtSide(offer, okOffer), spread)
}
