// Package rest exposes read-only book state for operators. It serves process
// stats and level snapshots, never market data ingestion.
package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"fxbook/internal/feed"
	"fxbook/internal/infra/health"
	"fxbook/internal/orderbook"
)

type Server struct {
	mux  *http.ServeMux
	proc *feed.Processor
	reg  *feed.Registry
}

func New(proc *feed.Processor, reg *feed.Registry) *Server {
	s := &Server{mux: http.NewServeMux(), proc: proc, reg: reg}
	s.mux.HandleFunc("/status", s.status)
	s.mux.HandleFunc("/books", s.books)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

type level struct {
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

type bookState struct {
	Security    string     `json:"security"`
	BestBid     *level     `json:"best_bid,omitempty"`
	BestOffer   *level     `json:"best_offer,omitempty"`
	Spread      *float64   `json:"spread,omitempty"`
	BidLevels   int        `json:"bid_levels"`
	OfferLevels int        `json:"offer_levels"`
	LastUpdate  *time.Time `json:"last_update,omitempty"`
}

type bookDepth struct {
	Security string  `json:"security"`
	Bids     []level `json:"bids"`
	Offers   []level `json:"offers"`
}

// status reports run counters and the top of every book.
func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Ready bool        `json:"ready"`
		Stats feed.Stats  `json:"stats"`
		Books []bookState `json:"books"`
	}{Ready: health.Ready(), Stats: s.proc.Stats(), Books: []bookState{}}
	for _, b := range s.reg.Books() {
		resp.Books = append(resp.Books, describe(b))
	}
	writeJSON(w, resp)
}

// books returns full level snapshots, for one security when ?security= is
// given, otherwise for all of them.
func (s *Server) books(w http.ResponseWriter, r *http.Request) {
	if sec := r.URL.Query().Get("security"); sec != "" {
		b, ok := s.reg.Get(sec)
		if !ok {
			http.Error(w, "unknown security", http.StatusNotFound)
			return
		}
		writeJSON(w, depth(b))
		return
	}
	out := []bookDepth{}
	for _, b := range s.reg.Books() {
		out = append(out, depth(b))
	}
	writeJSON(w, out)
}

func describe(b *orderbook.Book) bookState {
	st := bookState{Security: b.Security(), BidLevels: b.BidLevels(), OfferLevels: b.OfferLevels()}
	if l, ok := b.BestBid(); ok {
		st.BestBid = &level{Price: l.Price, Qty: l.Qty}
	}
	if l, ok := b.BestOffer(); ok {
		st.BestOffer = &level{Price: l.Price, Qty: l.Qty}
	}
	if v, ok := b.Spread(); ok {
		st.Spread = &v
	}
	if ts, ok := b.LastUpdate(); ok {
		st.LastUpdate = &ts
	}
	return st
}

func depth(b *orderbook.Book) bookDepth {
	d := bookDepth{Security: b.Security(), Bids: []level{}, Offers: []level{}}
	for _, l := range b.Bids() {
		d.Bids = append(d.Bids, level{Price: l.Price, Qty: l.Qty})
	}
	for _, l := range b.Offers() {
		d.Offers = append(d.Offers, level{Price: l.Price, Qty: l.Qty})
	}
	return d
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
