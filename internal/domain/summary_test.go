package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestNewRenderSummary(t *testing.T) {
	fixedTime := time.Date(2024, 4, 26, 12, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	defer SetClock(nil)

	subsets := []BandSubset{
		{Band: SpeedBands[0], Rows: []Observation{obs(1, 2, 0), obs(2, 3, 90)}},
		{Band: SpeedBands[1]},
		{Band: SpeedBands[5], Rows: []Observation{obs(3, 40, 180)}},
	}

	summary := NewRenderSummary(3, []string{"b.csv"}, 2, 4, subsets, 1500*time.Millisecond)

	assert.Equal(t, fixedTime, summary.GeneratedAt)
	assert.Equal(t, 3, summary.FilesAccepted)
	assert.Equal(t, []string{"b.csv"}, summary.FilesSkipped)
	assert.Equal(t, 4, summary.Rows)
	assert.Equal(t, 2, summary.RowsDropped)
	assert.Equal(t, int64(1500), summary.DurationMS)

	// Empty bands appear with a zero count.
	assert.Equal(t, 2, summary.BandCounts["Velocidade: 1-5 kt"])
	assert.Equal(t, 0, summary.BandCounts["Velocidade: 6-10 kt"])
	assert.Equal(t, 1, summary.BandCounts["Velocidade: > 30 kt"])
}

func TestSetClock(t *testing.T) {
	fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	assert.Equal(t, fixedTime, clock.Now())

	SetClock(nil)
	assert.True(t, time.Since(clock.Now()) < time.Second)
}
