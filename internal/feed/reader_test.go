package feed

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"
)

// snapshotCSV builds a file body with the canonical column order: security,
// time, bid prices 1..5, bid quantities 1..5, offer prices 1..5, offer
// quantities 1..5.
func snapshotCSV(rows ...string) string {
	h := []string{colSecurity, colTime}
	for i := 1; i <= 5; i++ { h = append(h, fmt.Sprintf("BI_price_%d", i)) }
	for i := 1; i <= 5; i++ { h = append(h, fmt.Sprintf("BI_quantity_%d", i)) }
	for i := 1; i <= 5; i++ { h = append(h, fmt.Sprintf("OF_price_%d", i)) }
	for i := 1; i <= 5; i++ { h = append(h, fmt.Sprintf("OF_quantity_%d", i)) }
	lines := append([]string{strings.Join(h, ",")}, rows...)
	return strings.Join(lines, "\n") + "\n"
}

func snapshotRow(sec, ts string, bp, bq, op, oq [5]float64) string {
	cells := []string{sec, ts}
	for _, block := range [][5]float64{bp, bq, op, oq} {
		for _, v := range block {
			cells = append(cells, strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	return strings.Join(cells, ",")
}

func TestReadRecordsSortsByTime(t *testing.T) {
	body := snapshotCSV(
		snapshotRow("EURUSD", "2024-03-01 09:31:00", [5]float64{1.11}, [5]float64{2}, [5]float64{}, [5]float64{}),
		snapshotRow("EURUSD", "2024-03-01 09:30:00", [5]float64{1.10}, [5]float64{5}, [5]float64{}, [5]float64{}),
	)
	recs, err := readRecords(strings.NewReader(body))
	if err != nil {
		t.Fatalf("readRecords: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if !recs[0].Time.Before(recs[1].Time) {
		t.Fatalf("records not sorted by time: %v then %v", recs[0].Time, recs[1].Time)
	}
	if recs[0].BidPrices[0] != 1.10 {
		t.Fatalf("earliest record should carry the 1.10 bid, got %v", recs[0].BidPrices[0])
	}
}

func TestReadRecordsMapsColumnsByName(t *testing.T) {
	// Column order is not part of the contract, only the names are.
	body := "OF_price_1,security,BI_quantity_1,time,BI_price_1,OF_quantity_1," +
		"BI_price_2,BI_price_3,BI_price_4,BI_price_5," +
		"BI_quantity_2,BI_quantity_3,BI_quantity_4,BI_quantity_5," +
		"OF_price_2,OF_price_3,OF_price_4,OF_price_5," +
		"OF_quantity_2,OF_quantity_3,OF_quantity_4,OF_quantity_5\n" +
		"1.11,EURUSD,5,2024-03-01 09:30:00,1.10,4," +
		"0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0\n"
	recs, err := readRecords(strings.NewReader(body))
	if err != nil {
		t.Fatalf("readRecords: %v", err)
	}
	rec := recs[0]
	if rec.Security != "EURUSD" {
		t.Errorf("security: got %q", rec.Security)
	}
	if rec.BidPrices[0] != 1.10 || rec.BidQtys[0] != 5 {
		t.Errorf("bid level 1: got %v x %v", rec.BidPrices[0], rec.BidQtys[0])
	}
	if rec.OfferPrices[0] != 1.11 || rec.OfferQtys[0] != 4 {
		t.Errorf("offer level 1: got %v x %v", rec.OfferPrices[0], rec.OfferQtys[0])
	}
}

func TestReadRecordsMissingColumn(t *testing.T) {
	body := "security,time,BI_price_1\nEURUSD,2024-03-01 09:30:00,1.10\n"
	_, err := readRecords(strings.NewReader(body))
	if err == nil {
		t.Fatal("expected an error for a missing column")
	}
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestReadRecordsBadFloat(t *testing.T) {
	good := snapshotRow("EURUSD", "2024-03-01 09:30:00", [5]float64{1.10}, [5]float64{5}, [5]float64{1.11}, [5]float64{4})
	cells := strings.Split(good, ",")
	cells[2] = "abc" // BI_price_1
	_, err := readRecords(strings.NewReader(snapshotCSV(strings.Join(cells, ","))))
	if err == nil {
		t.Fatal("expected an error for a non-numeric price")
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "BI_price_1" {
		t.Fatalf("expected FieldError for BI_price_1, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the offending line: %v", err)
	}
}

func TestReadRecordsBadTimestamp(t *testing.T) {
	body := snapshotCSV(snapshotRow("EURUSD", "not-a-time", [5]float64{1.10}, [5]float64{5}, [5]float64{}, [5]float64{}))
	_, err := readRecords(strings.NewReader(body))
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != colTime {
		t.Fatalf("expected FieldError for time, got %v", err)
	}
}

func TestReadRecordsEmptySecurity(t *testing.T) {
	body := snapshotCSV(snapshotRow("", "2024-03-01 09:30:00", [5]float64{1.10}, [5]float64{5}, [5]float64{}, [5]float64{}))
	_, err := readRecords(strings.NewReader(body))
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != colSecurity {
		t.Fatalf("expected FieldError for security, got %v", err)
	}
}

func TestReadRecordsTimestampLayouts(t *testing.T) {
	for _, ts := range []string{
		"2024-03-01T09:30:00.123456789Z",
		"2024-03-01T09:30:00Z",
		"2024-03-01 09:30:00.5",
		"2024-03-01 09:30:00",
		"2024-03-01",
	} {
		body := snapshotCSV(snapshotRow("EURUSD", ts, [5]float64{1.10}, [5]float64{5}, [5]float64{}, [5]float64{}))
		recs, err := readRecords(strings.NewReader(body))
		if err != nil {
			t.Errorf("timestamp %q rejected: %v", ts, err)
			continue
		}
		if recs[0].Time.IsZero() {
			t.Errorf("timestamp %q parsed to zero time", ts)
		}
	}
}

func TestReadRecordsHeaderOnly(t *testing.T) {
	recs, err := readRecords(strings.NewReader(snapshotCSV()))
	if err != nil {
		t.Fatalf("header-only file should not error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no records, got %d", len(recs))
	}
}

func TestReadRecordsEmptyInput(t *testing.T) {
	if _, err := readRecords(strings.NewReader("")); err == nil {
		t.Fatal("expected an error for an empty file")
	}
}

func TestReadRecordsNaNPassesThrough(t *testing.T) {
	good := snapshotRow("EURUSD", "2024-03-01 09:30:00", [5]float64{1.10}, [5]float64{5}, [5]float64{}, [5]float64{})
	cells := strings.Split(good, ",")
	cells[3] = "NaN" // BI_price_2: numeric, so not a conversion error
	recs, err := readRecords(strings.NewReader(snapshotCSV(strings.Join(cells, ","))))
	if err != nil {
		t.Fatalf("NaN is a valid float: %v", err)
	}
	if !math.IsNaN(recs[0].BidPrices[1]) {
		t.Fatalf("expected NaN at bid price 2, got %v", recs[0].BidPrices[1])
	}
}

func TestReadRecordsRaggedRow(t *testing.T) {
	body := snapshotCSV("EURUSD,2024-03-01 09:30:00,1.10")
	if _, err := readRecords(strings.NewReader(body)); err == nil {
		t.Fatal("expected an error for a short row")
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	if _, err := parseTime("yesterday"); err == nil {
		t.Fatal("expected an error")
	}
	got, err := parseTime("2024-03-01T09:30:00Z")
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}
