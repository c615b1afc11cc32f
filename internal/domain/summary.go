package domain

import "time"

// RenderSummary describes one completed render request. It is echoed in
// logs and, when the summary publisher is enabled, emitted as a JSON event.
type RenderSummary struct {
	GeneratedAt   time.Time      `json:"generated_at"`
	FilesAccepted int            `json:"files_accepted"`
	FilesSkipped  []string       `json:"files_skipped,omitempty"`
	Rows          int            `json:"rows"`
	RowsDropped   int            `json:"rows_dropped"`
	BandCounts    map[string]int `json:"band_counts"`
	DurationMS    int64          `json:"duration_ms"`
}

// NewRenderSummary builds the summary for a finished request. Band counts
// are keyed by display label; empty bands are listed with a zero count so
// consumers see the full band table. Rows is the unified dataset size, which
// can exceed the band-count sum because of the inter-band gaps. GeneratedAt
// comes from the package clock.
func NewRenderSummary(accepted int, skipped []string, dropped, rows int, subsets []BandSubset, duration time.Duration) RenderSummary {
	counts := make(map[string]int, len(subsets))
	for _, sub := range subsets {
		counts[sub.Band.Label] = len(sub.Rows)
	}

	return RenderSummary{
		GeneratedAt:   clock.Now().UTC(),
		FilesAccepted: accepted,
		FilesSkipped:  skipped,
		Rows:          rows,
		RowsDropped:   dropped,
		BandCounts:    counts,
		DurationMS:    duration.Milliseconds(),
	}
}
