// Package domain models INMET-style surface observation data and the
// wind-rose frequency distributions derived from it.
//
// # Input Format
//
// Observation files are semicolon-delimited text with a fixed twelve-column
// schema, one record per line:
//
//	date; time; temp; humidity; pressure; wind_speed; wind_dir;
//	cloudiness; insolation; max_temp; min_temp; rainfall
//
// The first line is a header and is discarded regardless of content; the
// schema is positional, never inferred. A line that does not split into
// exactly twelve fields makes the whole file malformed.
//
// Dates are DD/MM/YYYY. Times are HHMM in 24-hour notation and may arrive
// with fewer than four digits ("930" → "0930"); they are left zero-padded
// before parsing. Decimal values use the Brazilian locale comma ("5,0") and
// are converted to a decimal point before parsing. Wind speed is reported in
// meters per second and converted to knots with the factor 1.9438444924406.
//
// # Bands
//
// The unified dataset is partitioned into six half-open speed bands:
//
//	[1,5)  [6,10)  [11,15)  [16,20)  [21,30)  [31,+inf)
//
// Consecutive bands do not touch: speeds below 1 kt and speeds falling in an
// integer-boundary gap such as [5,6) belong to no band. The gaps reproduce
// the historical band table and are covered by tests; see [SpeedBands].
//
// # Sectors
//
// Wind direction is bucketed into sixteen compass sectors of 22.5° each,
// with sector 0 centered on 0° (north): sector i covers
// [i·22.5 − 11.25, i·22.5 + 11.25). Directions are stored as reported, range
// violations included; the aggregator wraps them into [0,360) with a true
// modulo only at sector-assignment time. See [NewRose].
package domain
