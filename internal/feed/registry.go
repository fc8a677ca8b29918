package feed

import (
	"sort"
	"sync"

	"fxbook/internal/orderbook"
)

// Registry owns the per-security book map. A book is created the first time
// a snapshot names its security and lives for the rest of the process.
type Registry struct {
	mu    sync.RWMutex
	books map[string]*orderbook.Book
}

func NewRegistry() *Registry {
	return &Registry{books: make(map[string]*orderbook.Book)}
}

// Apply routes one record to its book, creating the book on first sight.
// The bid side is applied before the offer side, and the last-update time is
// overwritten even when both sides ignored the snapshot.
func (r *Registry) Apply(rec Record) *orderbook.Book {
	r.mu.Lock()
	book, ok := r.books[rec.Security]
	if !ok {
		book = orderbook.New(rec.Security)
		r.books[rec.Security] = book
	}
	r.mu.Unlock()

	book.ApplyBidUpdate(rec.BidPrices[:], rec.BidQtys[:])
	book.ApplyOfferUpdate(rec.OfferPrices[:], rec.OfferQtys[:])
	book.SetLastUpdate(rec.Time)
	return book
}

func (r *Registry) Get(security string) (*orderbook.Book, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[security]
	return b, ok
}

// Securities returns the tracked identifiers in lexical order.
func (r *Registry) Securities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.books))
	for s := range r.books {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Books returns the tracked books ordered by security.
func (r *Registry) Books() []*orderbook.Book {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*orderbook.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Security() < out[j].Security() })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.books)
}
