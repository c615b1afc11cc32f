package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectorIndex(t *testing.T) {
	tests := []struct {
		name      string
		direction float64
		expected  int
	}{
		{"due north", 0, 0},
		{"just inside sector 0", 11.24, 0},
		{"sector boundary goes to next", 11.25, 1},
		{"due east", 90, 4},
		{"due south", 180, 8},
		{"due west", 270, 12},
		{"wraps back to north", 355, 0},
		{"full circle", 360, 0},
		{"over-range wraps", 400, 2},
		{"negative wraps", -45, 14},
		{"large negative wraps", -370, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sectorIndex(tt.direction, 16))
		})
	}
}

func TestBinIndex(t *testing.T) {
	edges := []float64{1, 2, 3, 4, 5, 6}

	tests := []struct {
		name     string
		speed    float64
		expected int
	}{
		{"bottom edge", 1.0, 0},
		{"inside first bin", 1.9, 0},
		{"interior edge opens next bin", 2.0, 1},
		{"inside last bin", 5.5, 4},
		{"top edge closed", 6.0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, binIndex(tt.speed, edges))
		})
	}
}

func TestNewRose(t *testing.T) {
	band := SpeedBands[1] // [6,10)

	t.Run("counts sum to subset size", func(t *testing.T) {
		subset := BandSubset{Band: band, Rows: []Observation{
			obs(1, 6.0, 0),
			obs(2, 7.0, 0),
			obs(3, 8.0, 90),
			obs(4, 9.9, 200),
		}}

		rose := NewRose(subset, 16, 5)

		assert.False(t, rose.Empty())
		assert.Equal(t, 4, rose.Total)
		assert.Equal(t, band, rose.Band)
		assert.Equal(t, 22.5, rose.SectorWidth)

		sum := 0
		for s := range rose.Counts {
			sum += rose.SectorTotal(s)
		}
		assert.Equal(t, 4, sum)
		assert.Equal(t, 2, rose.SectorTotal(0))
		assert.Equal(t, 1, rose.SectorTotal(4))
		assert.Equal(t, 2, rose.MaxSectorTotal())
	})

	t.Run("speed edges span the observed range", func(t *testing.T) {
		subset := BandSubset{Band: band, Rows: []Observation{
			obs(1, 6.0, 0),
			obs(2, 9.0, 0),
		}}

		rose := NewRose(subset, 16, 3)

		require.Len(t, rose.SpeedEdges, 4)
		assert.Equal(t, 6.0, rose.SpeedEdges[0])
		assert.Equal(t, 9.0, rose.SpeedEdges[3])
		for i := 1; i < len(rose.SpeedEdges); i++ {
			assert.Greater(t, rose.SpeedEdges[i], rose.SpeedEdges[i-1])
		}
	})

	t.Run("fastest observation lands in the top bin", func(t *testing.T) {
		subset := BandSubset{Band: band, Rows: []Observation{
			obs(1, 6.0, 0),
			obs(2, 9.0, 0),
		}}

		rose := NewRose(subset, 16, 3)

		assert.Equal(t, 1, rose.Counts[0][0])
		assert.Equal(t, 1, rose.Counts[0][2])
	})

	t.Run("single-speed subset still bins", func(t *testing.T) {
		subset := BandSubset{Band: band, Rows: []Observation{
			obs(1, 7.0, 0),
			obs(2, 7.0, 90),
		}}

		rose := NewRose(subset, 16, 5)

		assert.Equal(t, 2, rose.Total)
		assert.Equal(t, 7.0, rose.SpeedEdges[0])
		assert.Equal(t, 8.0, rose.SpeedEdges[len(rose.SpeedEdges)-1])
	})

	t.Run("out-of-range directions wrap for sector assignment", func(t *testing.T) {
		subset := BandSubset{Band: band, Rows: []Observation{
			obs(1, 7.0, 400), // wraps to 40 -> sector 2
			obs(2, 7.0, -45), // wraps to 315 -> sector 14
		}}

		rose := NewRose(subset, 16, 5)

		assert.Equal(t, 1, rose.SectorTotal(2))
		assert.Equal(t, 1, rose.SectorTotal(14))
	})

	t.Run("empty subset yields empty distribution", func(t *testing.T) {
		rose := NewRose(BandSubset{Band: band}, 16, 5)

		assert.True(t, rose.Empty())
		assert.Empty(t, rose.SpeedEdges)
		assert.Empty(t, rose.Counts)
		assert.Equal(t, 0, rose.MaxSectorTotal())
	})
}

func TestCompassLabels(t *testing.T) {
	t.Run("sixteen sectors use compass names", func(t *testing.T) {
		labels := CompassLabels(16)
		require.Len(t, labels, 16)
		assert.Equal(t, "N", labels[0])
		assert.Equal(t, "E", labels[4])
		assert.Equal(t, "S", labels[8])
		assert.Equal(t, "W", labels[12])
		assert.Equal(t, "NNW", labels[15])
	})

	t.Run("other sector counts use degrees", func(t *testing.T) {
		labels := CompassLabels(8)
		require.Len(t, labels, 8)
		assert.Equal(t, "0°", labels[0])
		assert.Equal(t, "45°", labels[1])
		assert.Equal(t, "315°", labels[7])
	})
}
