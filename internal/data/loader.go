package data

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tqqq-trading/internal/market"
)

// LoadFile loads bars from a CSV or JSON file, dispatching on the file
// extension.
func LoadFile(path string) ([]market.Bar, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".json":
		return LoadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported data file format: %s", path)
	}
}

// LoadCSV loads bars from a CSV file with a header row and columns
// timestamp, open, high, low, close, volume and an optional vwap.
func LoadCSV(path string) ([]market.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	var bars []market.Bar
	for i, record := range records {
		if i == 0 {
			// Header row.
			continue
		}
		if len(record) < 6 {
			continue
		}

		timestamp, err := ParseTimestamp(record[0])
		if err != nil {
			return nil, err
		}
		open, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid open price on line %d: %w", i+1, err)
		}
		high, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid high price on line %d: %w", i+1, err)
		}
		low, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid low price on line %d: %w", i+1, err)
		}
		closePrice, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid close price on line %d: %w", i+1, err)
		}
		volume, err := strconv.ParseUint(record[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid volume on line %d: %w", i+1, err)
		}

		bar := market.Bar{
			Timestamp: timestamp,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
		}
		if len(record) > 6 {
			if vwap, err := strconv.ParseFloat(record[6], 64); err == nil {
				bar.VWAP = &vwap
			}
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

// LoadJSON loads bars from a JSON file holding an array of bars.
func LoadJSON(path string) ([]market.Bar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	var bars []market.Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, fmt.Errorf("failed to parse JSON bars: %w", err)
	}
	return bars, nil
}

// timestampLayouts are the non-RFC3339 formats accepted by
// ParseTimestamp.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTimestamp parses a timestamp from RFC 3339, a handful of common
// layouts, or unix seconds. All results are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}
