package domain

import (
	"math"
	"strings"
)

// SpeedBand is a half-open [Min, Max) wind-speed interval in knots, paired
// with its display label.
type SpeedBand struct {
	Min   float64
	Max   float64 // math.Inf(1) for the unbounded top band
	Label string
}

// SpeedBands are the six canonical bands, in rendering order. The order is
// significant: it drives panel layout in the combined figure.
//
// Consecutive bands deliberately do not touch. Speeds below 1 kt and speeds
// in an integer-boundary gap such as [5,6) belong to no band; this
// reproduces the historical band table exactly.
var SpeedBands = []SpeedBand{
	{Min: 1, Max: 5, Label: "Velocidade: 1-5 kt"},
	{Min: 6, Max: 10, Label: "Velocidade: 6-10 kt"},
	{Min: 11, Max: 15, Label: "Velocidade: 11-15 kt"},
	{Min: 16, Max: 20, Label: "Velocidade: 16-20 kt"},
	{Min: 21, Max: 30, Label: "Velocidade: 21-30 kt"},
	{Min: 31, Max: math.Inf(1), Label: "Velocidade: > 30 kt"},
}

// Contains reports whether v falls in the band's half-open interval.
func (b SpeedBand) Contains(v float64) bool {
	return v >= b.Min && v < b.Max
}

// ArtifactName derives the downloadable file stem from the display label:
// colons removed, spaces converted to underscores. The caller appends the
// format extension.
func (b SpeedBand) ArtifactName() string {
	name := strings.ReplaceAll(b.Label, ":", "")
	return strings.ReplaceAll(name, " ", "_")
}

// BandSubset pairs a band with the dataset rows falling inside it.
type BandSubset struct {
	Band SpeedBand
	Rows []Observation
}

// Partition splits the dataset into one subset per canonical band, in
// declaration order. Membership is a strict partition: each row lands in at
// most one band, and rows in no band's interval are simply not represented.
func Partition(ds Dataset) []BandSubset {
	subsets := make([]BandSubset, len(SpeedBands))
	for i, b := range SpeedBands {
		subsets[i].Band = b
	}

	for _, row := range ds.Rows {
		for i := range subsets {
			if subsets[i].Band.Contains(row.SpeedKnots) {
				subsets[i].Rows = append(subsets[i].Rows, row)
				break
			}
		}
	}

	return subsets
}
