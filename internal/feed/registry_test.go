package feed

import (
	"testing"
	"time"

	"fxbook/internal/orderbook"
)

func record(sec string, ts time.Time, bp, bq, op, oq [5]float64) Record {
	return Record{
		Security:    sec,
		Time:        ts,
		BidPrices:   bp,
		BidQtys:     bq,
		OfferPrices: op,
		OfferQtys:   oq,
	}
}

func TestRegistryCreateOnFirstSight(t *testing.T) {
	reg := NewRegistry()
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	if _, ok := reg.Get("EURUSD"); ok {
		t.Fatal("fresh registry should be empty")
	}

	first := reg.Apply(record("EURUSD", ts, [5]float64{1.10}, [5]float64{5}, [5]float64{}, [5]float64{}))
	second := reg.Apply(record("EURUSD", ts.Add(time.Second), [5]float64{1.09}, [5]float64{3}, [5]float64{}, [5]float64{}))

	if first != second {
		t.Fatal("same security should reuse the same book")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 book, got %d", reg.Len())
	}
	got, ok := reg.Get("EURUSD")
	if !ok || got != first {
		t.Fatal("Get should return the book Apply created")
	}
}

func TestRegistryApplyRoutesBothSides(t *testing.T) {
	reg := NewRegistry()
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	book := reg.Apply(record("EURUSD", ts,
		[5]float64{1.10, 1.09}, [5]float64{5, 3},
		[5]float64{1.11, 1.12}, [5]float64{4, 6}))

	if best, ok := book.BestBid(); !ok || best != (orderbook.Level{Price: 1.10, Qty: 5}) {
		t.Fatalf("best bid: got %v ok=%v", best, ok)
	}
	if best, ok := book.BestOffer(); !ok || best != (orderbook.Level{Price: 1.11, Qty: 4}) {
		t.Fatalf("best offer: got %v ok=%v", best, ok)
	}
	if got, ok := book.LastUpdate(); !ok || !got.Equal(ts) {
		t.Fatalf("last update: got %v ok=%v", got, ok)
	}
}

func TestRegistryLastUpdateOverwrittenOnNoOpSnapshot(t *testing.T) {
	reg := NewRegistry()
	t0 := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	book := reg.Apply(record("EURUSD", t0, [5]float64{1.10}, [5]float64{5}, [5]float64{1.11}, [5]float64{4}))
	bidsBefore := book.Bids()

	// All-zero prices on both sides: levels untouched, timestamp still moves.
	reg.Apply(record("EURUSD", t1, [5]float64{}, [5]float64{9}, [5]float64{}, [5]float64{9}))

	if got := book.Bids(); len(got) != len(bidsBefore) || got[0] != bidsBefore[0] {
		t.Fatalf("no-op snapshot changed the bid side: %v -> %v", bidsBefore, got)
	}
	if got, _ := book.LastUpdate(); !got.Equal(t1) {
		t.Fatalf("last update should advance to %v, got %v", t1, got)
	}
}

func TestRegistryOrderedAccessors(t *testing.T) {
	reg := NewRegistry()
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	for _, sec := range []string{"USDJPY", "EURUSD", "GBPUSD"} {
		reg.Apply(record(sec, ts, [5]float64{1}, [5]float64{1}, [5]float64{}, [5]float64{}))
	}

	want := []string{"EURUSD", "GBPUSD", "USDJPY"}
	got := reg.Securities()
	if len(got) != len(want) {
		t.Fatalf("securities: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("securities: want %v, got %v", want, got)
		}
	}

	books := reg.Books()
	for i := range want {
		if books[i].Security() != want[i] {
			t.Fatalf("books out of order: got %s at %d", books[i].Security(), i)
		}
	}
}
