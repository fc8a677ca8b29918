package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"fxbook/internal/orderbook"
)

var ErrMissingField = errors.New("missing field")

const (
	colSecurity = "security"
	colTime     = "time"
)

// Accepted timestamp layouts, tried in order. The plain date form shows up
// in hand-built fixture files.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// header maps the columns fxbook needs to their positions in one file.
type header struct {
	security, time                         int
	bidPrice, bidQty, offerPrice, offerQty [orderbook.SnapshotDepth]int
}

func parseHeader(cols []string) (header, error) {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[strings.TrimSpace(c)] = i
	}
	lookup := func(name string) (int, error) {
		i, ok := idx[name]
		if !ok {
			return 0, &FieldError{Field: name, Err: ErrMissingField}
		}
		return i, nil
	}

	var h header
	var err error
	if h.security, err = lookup(colSecurity); err != nil {
		return h, err
	}
	if h.time, err = lookup(colTime); err != nil {
		return h, err
	}
	for i := 0; i < orderbook.SnapshotDepth; i++ {
		n := i + 1
		if h.bidPrice[i], err = lookup(fmt.Sprintf("BI_price_%d", n)); err != nil {
			return h, err
		}
		if h.bidQty[i], err = lookup(fmt.Sprintf("BI_quantity_%d", n)); err != nil {
			return h, err
		}
		if h.offerPrice[i], err = lookup(fmt.Sprintf("OF_price_%d", n)); err != nil {
			return h, err
		}
		if h.offerQty[i], err = lookup(fmt.Sprintf("OF_quantity_%d", n)); err != nil {
			return h, err
		}
	}
	return h, nil
}

func (h header) record(row []string) (Record, error) {
	var rec Record
	rec.Security = strings.TrimSpace(row[h.security])
	if rec.Security == "" {
		return rec, &FieldError{Field: colSecurity, Err: errors.New("empty")}
	}
	ts, err := parseTime(strings.TrimSpace(row[h.time]))
	if err != nil {
		return rec, &FieldError{Field: colTime, Value: row[h.time], Err: err}
	}
	rec.Time = ts
	for i := 0; i < orderbook.SnapshotDepth; i++ {
		n := i + 1
		if rec.BidPrices[i], err = parseFloat(row, h.bidPrice[i], fmt.Sprintf("BI_price_%d", n)); err != nil {
			return rec, err
		}
		if rec.BidQtys[i], err = parseFloat(row, h.bidQty[i], fmt.Sprintf("BI_quantity_%d", n)); err != nil {
			return rec, err
		}
		if rec.OfferPrices[i], err = parseFloat(row, h.offerPrice[i], fmt.Sprintf("OF_price_%d", n)); err != nil {
			return rec, err
		}
		if rec.OfferQtys[i], err = parseFloat(row, h.offerQty[i], fmt.Sprintf("OF_quantity_%d", n)); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func parseFloat(row []string, idx int, name string) (float64, error) {
	s := strings.TrimSpace(row[idx])
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &FieldError{Field: name, Value: s, Err: err}
	}
	return v, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp")
}

// ReadFile parses one snapshot CSV into typed records sorted by snapshot
// time. Any bad row fails the whole file, so callers never apply a partial
// batch.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil { return nil, err }
	defer f.Close()
	return readRecords(f)
}

func readRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cols, err := cr.Read()
	if err == io.EOF { return nil, errors.New("empty file") }
	if err != nil { return nil, err }
	h, err := parseHeader(cols)
	if err != nil { return nil, err }

	var recs []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF { break }
		if err != nil { return nil, err }
		rec, err := h.record(row)
		if err != nil { return nil, fmt.Errorf("line %d: %w", line, err) }
		recs = append(recs, rec)
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Time.Before(recs[j].Time) })
	return recs, nil
}
