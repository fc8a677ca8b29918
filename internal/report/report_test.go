package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"fxbook/internal/feed"
)

func TestWriteSummary(t *testing.T) {
	reg := feed.NewRegistry()
	reg.Apply(feed.Record{
		Security:    "EURUSD",
		Time:        time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		BidPrices:   [5]float64{1.10, 1.09},
		BidQtys:     [5]float64{5, 3},
		OfferPrices: [5]float64{1.11},
		OfferQtys:   [5]float64{4},
	})
	reg.Apply(feed.Record{
		Security:  "GBPUSD",
		Time:      time.Date(2024, 3, 1, 9, 31, 0, 0, time.UTC),
		BidPrices: [5]float64{1.25},
		BidQtys:   [5]float64{7},
	})

	var buf bytes.Buffer
	st := feed.Stats{FilesProcessed: 2, FilesSkipped: 1, RecordsApplied: 2, Securities: reg.Len()}
	if err := Write(&buf, st, reg.Books()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "files=2 skipped=1 records=2 securities=2") {
		t.Errorf("missing run totals:\n%s", out)
	}
	if !strings.Contains(out, "EURUSD") || !strings.Contains(out, "GBPUSD") {
		t.Errorf("missing security blocks:\n%s", out)
	}
	if !strings.Contains(out, "best bid:    1.1 x 5") {
		t.Errorf("missing EURUSD best bid:\n%s", out)
	}
	if !strings.Contains(out, "spread:      -") {
		t.Errorf("one-sided GBPUSD book should render a dash spread:\n%s", out)
	}
	if !strings.Contains(out, "2 bid / 1 offer") {
		t.Errorf("missing level counts:\n%s", out)
	}
	if strings.Index(out, "EURUSD") > strings.Index(out, "GBPUSD") {
		t.Errorf("books should render in lexical order:\n%s", out)
	}
}
