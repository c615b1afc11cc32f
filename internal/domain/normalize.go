package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KnotsPerMeterPerSecond converts wind speed from m/s to knots.
const KnotsPerMeterPerSecond = 1.9438444924406

// timestampLayout parses the combined date and zero-padded time columns,
// e.g. "26/04/2024 0930".
const timestampLayout = "02/01/2006 1504"

// TimestampParseError reports a row whose date/time columns do not match the
// DD/MM/YYYY HHMM layout. It is recovered locally: the row is dropped and
// the file continues.
type TimestampParseError struct {
	Date string
	Time string
	Err  error
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("parse timestamp %q %q: %v", e.Date, e.Time, e.Err)
}

func (e *TimestampParseError) Unwrap() error { return e.Err }

// NormalizeFile converts one file's raw records into observations.
//
// Whole-file emptiness is decided first: if every record's wind speed is
// empty, or every record's wind direction is empty, the file is classified
// non-contributing and no per-row normalization is attempted. Otherwise rows
// are normalized individually, and a row is dropped (never kept with a
// placeholder) when its timestamp or either wind field fails to parse.
func NormalizeFile(name string, records []RawRecord) FileResult {
	result := FileResult{Name: name}

	if columnEmpty(records, func(r RawRecord) string { return r.WindSpeed }) ||
		columnEmpty(records, func(r RawRecord) string { return r.WindDirection }) {
		result.Empty = true
		return result
	}

	result.Rows = make([]Observation, 0, len(records))
	for _, rec := range records {
		ts, err := parseTimestamp(rec.Date, rec.Time)
		if err != nil {
			result.Dropped.Timestamp++
			continue
		}

		speed, ok := parseLocaleFloat(rec.WindSpeed)
		if !ok {
			result.Dropped.Numeric++
			continue
		}
		direction, ok := parseLocaleFloat(rec.WindDirection)
		if !ok {
			result.Dropped.Numeric++
			continue
		}

		result.Rows = append(result.Rows, Observation{
			Timestamp:  ts,
			SpeedKnots: speed * KnotsPerMeterPerSecond,
			Direction:  direction,
		})
	}

	return result
}

// columnEmpty reports whether the selected column is blank in every record.
// Vacuously true for zero records.
func columnEmpty(records []RawRecord, field func(RawRecord) string) bool {
	for _, rec := range records {
		if strings.TrimSpace(field(rec)) != "" {
			return false
		}
	}
	return true
}

// parseTimestamp combines the date column with the left zero-padded time
// column ("930" → "0930") into one timestamp.
func parseTimestamp(date, hhmm string) (time.Time, error) {
	padded := strings.TrimSpace(hhmm)
	for len(padded) < 4 {
		padded = "0" + padded
	}

	ts, err := time.Parse(timestampLayout, strings.TrimSpace(date)+" "+padded)
	if err != nil {
		return time.Time{}, &TimestampParseError{Date: date, Time: hhmm, Err: err}
	}
	return ts, nil
}

// parseLocaleFloat parses a locale-formatted decimal ("10,5" → 10.5).
// Empty or unparseable values report false.
func parseLocaleFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
