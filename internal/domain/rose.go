package domain

import (
	"math"
	"strconv"
)

// Default aggregation geometry: sixteen compass sectors of 22.5°, five speed
// sub-bins for color layering.
const (
	DefaultSectors   = 16
	DefaultSpeedBins = 5
)

// compassNames are the sixteen compass point names, clockwise from north.
var compassNames = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Rose is the joint direction-by-speed frequency distribution for one band
// subset: the exact input a renderer needs to draw a wind rose. It is
// produced fresh per render request and never persisted.
type Rose struct {
	Band        SpeedBand
	Sectors     int
	SectorWidth float64 // degrees

	// SpeedEdges are the sub-bin boundaries within the band, derived from
	// the subset's observed speed range: len = bins+1, equal width, last
	// bin closed at the top edge. Empty when the subset has no rows.
	SpeedEdges []float64

	// Counts is sector-major: Counts[sector][bin] is the number of
	// observations in that direction sector and speed sub-bin.
	Counts [][]int

	Total int
}

// Empty reports whether the distribution has no observations. Empty roses
// must be skipped by renderers, never drawn as a blank panel.
func (r Rose) Empty() bool { return r.Total == 0 }

// SectorTotal returns the observation count for one direction sector across
// all speed sub-bins.
func (r Rose) SectorTotal(sector int) int {
	n := 0
	for _, c := range r.Counts[sector] {
		n += c
	}
	return n
}

// MaxSectorTotal returns the largest per-sector count, the radial full scale
// for a wind rose plot.
func (r Rose) MaxSectorTotal() int {
	best := 0
	for s := range r.Counts {
		if n := r.SectorTotal(s); n > best {
			best = n
		}
	}
	return best
}

// NewRose aggregates a band subset into sectors × speed sub-bins.
//
// Sector 0 is centered on 0° (north): sector i covers the half-open range
// [i·w − w/2, i·w + w/2) where w = 360/sectors. Directions are wrapped into
// [0,360) with a true modulo before sector assignment (−45 → 315, 400 → 40);
// the stored observations keep their raw values.
//
// Speed sub-bin edges span the subset's observed min..max in equal widths.
// The top bin is closed so the fastest observation lands in a bin.
func NewRose(subset BandSubset, sectors, speedBins int) Rose {
	rose := Rose{
		Band:        subset.Band,
		Sectors:     sectors,
		SectorWidth: 360.0 / float64(sectors),
	}
	if len(subset.Rows) == 0 {
		return rose
	}

	rose.SpeedEdges = speedEdges(subset.Rows, speedBins)
	rose.Counts = make([][]int, sectors)
	for s := range rose.Counts {
		rose.Counts[s] = make([]int, speedBins)
	}

	for _, row := range subset.Rows {
		s := sectorIndex(row.Direction, sectors)
		b := binIndex(row.SpeedKnots, rose.SpeedEdges)
		rose.Counts[s][b]++
		rose.Total++
	}

	return rose
}

// speedEdges computes equal-width sub-bin boundaries over the observed speed
// range. A single-speed subset gets a 1 kt wide range so every edge is
// distinct.
func speedEdges(rows []Observation, bins int) []float64 {
	lo, hi := rows[0].SpeedKnots, rows[0].SpeedKnots
	for _, row := range rows[1:] {
		if row.SpeedKnots < lo {
			lo = row.SpeedKnots
		}
		if row.SpeedKnots > hi {
			hi = row.SpeedKnots
		}
	}
	if hi == lo {
		hi = lo + 1
	}

	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + (hi-lo)*float64(i)/float64(bins)
	}
	return edges
}

// sectorIndex maps a direction in degrees to its compass sector. Directions
// are wrapped into [0,360) first; the half-sector shift centers sector 0 on
// north.
func sectorIndex(direction float64, sectors int) int {
	d := math.Mod(direction, 360)
	if d < 0 {
		d += 360
	}
	width := 360.0 / float64(sectors)
	return int(math.Floor(d/width+0.5)) % sectors
}

// binIndex maps a speed to its sub-bin. Values at or above the last interior
// edge fall in the top bin, closing it at the upper boundary.
func binIndex(v float64, edges []float64) int {
	for i := len(edges) - 2; i > 0; i-- {
		if v >= edges[i] {
			return i
		}
	}
	return 0
}

// CompassLabels returns tick labels for the given sector count: the sixteen
// compass point names when sectors is 16, otherwise center angles in
// degrees.
func CompassLabels(sectors int) []string {
	if sectors == len(compassNames) {
		return compassNames
	}
	labels := make([]string, sectors)
	width := 360.0 / float64(sectors)
	for i := range labels {
		labels[i] = strconv.FormatFloat(width*float64(i), 'f', -1, 64) + "°"
	}
	return labels
}
