// Package market loads market data into per-date observations and keeps the
// observation history consumed by the pricer.
package market

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

	"github.com/banachtech/hedger/model"
)

// Columns of a market data file.
const (
	ColID    = "Id"
	ColDate  = "DateOfPrice"
	ColValue = "Value"
)

// ReadFile reads a market data CSV file and groups it by date.
func ReadFile(path string) ([]model.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ticks, err := ReadTicks(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return GroupByDate(ticks), nil
}

// ReadTicks parses CSV rows with an Id, DateOfPrice and Value header.
func ReadTicks(r io.Reader) ([]model.Tick, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty market data")
		}
		return nil, err
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, c := range []string{ColID, ColDate, ColValue} {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var ticks []model.Tick
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		d, err := model.ParseDate(rec[col[ColDate]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[col[ColValue]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ticks = append(ticks, model.Tick{ID: strings.TrimSpace(rec[col[ColID]]), Date: d, Value: v})
	}
	return ticks, nil
}

// WriteTicks writes ticks in the format read by ReadTicks.
func WriteTicks(w io.Writer, ticks []model.Tick) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColID, ColDate, ColValue}); err != nil {
		return err
	}
	for _, t := range ticks {
		rec := []string{t.ID, t.Date.Format(model.Layout), strconv.FormatFloat(t.Value, 'g', -1, 64)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// GroupByDate builds one observation per distinct date, ascending by date.
// A later tick for the same asset and date replaces an earlier one.
func GroupByDate(ticks []model.Tick) []model.Observation {
	byDate := map[time.Time]map[string]float64{}
	for _, t := range ticks {
		spot, ok := byDate[t.Date]
		if !ok {
			spot = map[string]float64{}
			byDate[t.Date] = spot
		}
		spot[t.ID] = t.Value
	}

	out := make([]model.Observation, 0, len(byDate))
	for d, spot := range byDate {
		out = append(out, model.Observation{Date: d, Spot: spot})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
