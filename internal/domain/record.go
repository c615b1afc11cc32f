package domain

import "time"

// FieldCount is the fixed number of semicolon-delimited columns per record.
const FieldCount = 12

// RawRecord is one observation row exactly as it appears in the file, before
// any type conversion. Wind fields may be empty; decimals use a locale comma.
type RawRecord struct {
	Date          string // DD/MM/YYYY
	Time          string // HHMM, possibly missing leading zeros
	Temperature   string
	Humidity      string
	Pressure      string
	WindSpeed     string // m/s, locale decimal, may be empty
	WindDirection string // degrees, locale decimal, may be empty
	Cloudiness    string
	Insolation    string
	MaxTemp       string
	MinTemp       string
	Rainfall      string
}

// Observation is a normalized, analysis-ready row. Rows missing either wind
// field never reach this type; they are dropped during normalization.
type Observation struct {
	Timestamp  time.Time
	SpeedKnots float64
	// Direction is kept exactly as reported, including values outside
	// [0,360). Wrapping happens only during sector assignment.
	Direction float64
}

// DropCounts tallies rows excluded during normalization, by reason.
type DropCounts struct {
	Timestamp int
	Numeric   int
}

// Total returns the number of dropped rows across all reasons.
func (d DropCounts) Total() int { return d.Timestamp + d.Numeric }

// FileResult is the outcome of normalizing one uploaded file. A file is
// classified exactly once: Empty is decided before per-row work starts and
// is never re-evaluated.
type FileResult struct {
	Name    string
	Rows    []Observation
	Empty   bool
	Dropped DropCounts
}

// Contributing reports whether the file yielded at least one observation.
func (f FileResult) Contributing() bool { return !f.Empty && len(f.Rows) > 0 }

// Dataset is the unified concatenation of observations from all contributing
// files, in upload order then row order. It is built only by Combine and
// treated as immutable afterwards.
type Dataset struct {
	Rows []Observation
}

// Len returns the number of observations in the dataset.
func (d Dataset) Len() int { return len(d.Rows) }
