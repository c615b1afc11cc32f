package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brisalabs/windrose-service/internal/domain"
	"github.com/brisalabs/windrose-service/internal/observability"
)

// InputFile is one uploaded observation file, fully buffered.
type InputFile struct {
	Name string
	Data []byte
}

// RenderOptions selects which artifacts a request produces. The combined
// figure is always rendered; per-band figures are opt-in.
type RenderOptions struct {
	PerBand bool
}

// BandArtifact is one rendered per-band wind rose.
type BandArtifact struct {
	Band     domain.SpeedBand
	Filename string
	PNG      []byte
}

// Result is everything a host adapter needs to answer a render request.
type Result struct {
	FilesAccepted int
	FilesSkipped  []string
	Rows          int
	RowsDropped   domain.DropCounts

	Combined []byte
	Bands    []BandArtifact

	Summary domain.RenderSummary
}

// CombinedFilename is the download name for the multi-panel figure.
const CombinedFilename = "wind_roses.png"

// NoDataError reports that every uploaded file was non-contributing. It is a
// clean terminal condition, not a failure: the caller shows the message and
// produces no charts.
type NoDataError struct {
	Skipped []string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no usable wind data in any uploaded file (%s)", strings.Join(e.Skipped, ", "))
}

func (e *NoDataError) Unwrap() error { return domain.ErrNoData }

// Renderer turns frequency distributions into raster images. Implementations
// must reject empty distributions rather than drawing blank panels.
type Renderer interface {
	// RenderCombined draws the non-empty roses as panels of one figure,
	// reflowed in order into a three-column grid.
	RenderCombined(ctx context.Context, roses []domain.Rose) ([]byte, error)
	// RenderBand draws a single standalone wind rose.
	RenderBand(ctx context.Context, rose domain.Rose) ([]byte, error)
}

// SummaryPublisher emits a render summary after a successful request.
type SummaryPublisher interface {
	Publish(ctx context.Context, summary domain.RenderSummary) error
}

// Pipeline runs the full parse-normalize-combine-partition-aggregate-render
// sequence for one request. It holds no per-request state: each call owns
// its dataset and distributions for the call's lifetime only.
type Pipeline struct {
	renderer  Renderer
	publisher SummaryPublisher // nil when summary publishing is disabled
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	sectors   int
	speedBins int
}

// New creates a Pipeline with the given collaborators and aggregation
// geometry. Pass a nil publisher to disable summary publishing.
func New(r Renderer, pub SummaryPublisher, logger *slog.Logger, metrics *observability.Metrics, sectors, speedBins int) *Pipeline {
	return &Pipeline{
		renderer:  r,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
		sectors:   sectors,
		speedBins: speedBins,
	}
}

// CheckReadiness returns nil once the raster stack has produced at least one
// image (warm-up included), or an error describing why the service is not
// yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a render yet")
	}
	return nil
}

// WarmUp renders a tiny synthetic distribution to verify the raster stack
// before the service accepts traffic, then flips readiness.
func (p *Pipeline) WarmUp(ctx context.Context) error {
	subset := domain.BandSubset{
		Band: domain.SpeedBands[0],
		Rows: []domain.Observation{
			{SpeedKnots: 2, Direction: 0},
			{SpeedKnots: 4, Direction: 90},
		},
	}
	if _, err := p.renderer.RenderBand(ctx, domain.NewRose(subset, p.sectors, p.speedBins)); err != nil {
		return fmt.Errorf("warm-up render: %w", err)
	}
	p.ready.Store(true)
	return nil
}

// Render executes one full request: every uploaded file is re-parsed and
// re-normalized, the unified dataset partitioned and aggregated, and the
// figures rendered. Nothing is cached between calls.
//
// Error contract: a *domain.MalformedFileError aborts the request naming the
// offending file; a *NoDataError means every file was non-contributing; any
// other error is a render failure.
func (p *Pipeline) Render(ctx context.Context, files []InputFile, opts RenderOptions) (Result, error) {
	start := time.Now()
	p.metrics.RequestsInFlight.Inc()
	defer p.metrics.RequestsInFlight.Dec()

	result := Result{FilesAccepted: len(files)}
	p.metrics.FilesAccepted.Add(float64(len(files)))

	normalized, err := p.normalizeFiles(files, &result)
	if err != nil {
		p.metrics.Renders.WithLabelValues("malformed").Inc()
		return Result{}, err
	}

	dataset, skipped, err := domain.Combine(normalized)
	result.FilesSkipped = skipped
	p.metrics.FilesSkipped.Add(float64(len(skipped)))
	if err != nil {
		p.metrics.Renders.WithLabelValues("no_data").Inc()
		p.logger.Warn("no usable wind data", "files", len(files), "skipped", skipped)
		return result, &NoDataError{Skipped: skipped}
	}

	result.Rows = dataset.Len()
	p.metrics.RowsParsed.Add(float64(dataset.Len()))
	p.metrics.DatasetRows.Observe(float64(dataset.Len()))

	subsets := domain.Partition(dataset)
	roses := p.aggregate(subsets)

	if err := p.render(ctx, roses, opts, &result); err != nil {
		p.metrics.Renders.WithLabelValues("render_error").Inc()
		return Result{}, err
	}

	result.Summary = domain.NewRenderSummary(
		result.FilesAccepted, skipped, result.RowsDropped.Total(), dataset.Len(), subsets, time.Since(start))
	p.publishSummary(ctx, result.Summary)

	p.metrics.Renders.WithLabelValues("ok").Inc()
	p.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)

	p.logger.Info("render complete",
		"files", result.FilesAccepted,
		"skipped", len(result.FilesSkipped),
		"rows", result.Rows,
		"rows_dropped", result.RowsDropped.Total(),
		"panels", countNonEmpty(roses),
		"duration", time.Since(start),
	)
	return result, nil
}

// normalizeFiles parses and normalizes each upload, accumulating drop counts.
func (p *Pipeline) normalizeFiles(files []InputFile, result *Result) ([]domain.FileResult, error) {
	normalized := make([]domain.FileResult, 0, len(files))
	for _, f := range files {
		records, err := domain.ParseFile(f.Name, f.Data)
		if err != nil {
			p.logger.Error("rejecting request", "file", f.Name, "error", err)
			return nil, err
		}

		fr := domain.NormalizeFile(f.Name, records)
		p.metrics.RowsDropped.WithLabelValues("timestamp").Add(float64(fr.Dropped.Timestamp))
		p.metrics.RowsDropped.WithLabelValues("numeric").Add(float64(fr.Dropped.Numeric))
		result.RowsDropped.Timestamp += fr.Dropped.Timestamp
		result.RowsDropped.Numeric += fr.Dropped.Numeric

		if fr.Empty {
			p.logger.Warn("file has no usable wind data", "file", f.Name)
		} else if fr.Dropped.Total() > 0 {
			p.logger.Debug("rows dropped during normalization",
				"file", f.Name, "timestamp", fr.Dropped.Timestamp, "numeric", fr.Dropped.Numeric)
		}

		normalized = append(normalized, fr)
	}
	return normalized, nil
}

// aggregate builds one rose per canonical band, empty bands included; the
// renderer sees only the non-empty ones.
func (p *Pipeline) aggregate(subsets []domain.BandSubset) []domain.Rose {
	roses := make([]domain.Rose, len(subsets))
	for i, sub := range subsets {
		roses[i] = domain.NewRose(sub, p.sectors, p.speedBins)
	}
	return roses
}

// render produces the combined figure and, when requested, the per-band
// artifacts. Empty bands are omitted entirely, never drawn as placeholders.
func (p *Pipeline) render(ctx context.Context, roses []domain.Rose, opts RenderOptions, result *Result) error {
	nonEmpty := make([]domain.Rose, 0, len(roses))
	for _, r := range roses {
		if !r.Empty() {
			nonEmpty = append(nonEmpty, r)
		}
	}

	combined, err := p.renderer.RenderCombined(ctx, nonEmpty)
	if err != nil {
		return fmt.Errorf("render combined figure: %w", err)
	}
	result.Combined = combined

	if !opts.PerBand {
		return nil
	}
	for _, rose := range nonEmpty {
		png, err := p.renderer.RenderBand(ctx, rose)
		if err != nil {
			return fmt.Errorf("render band %q: %w", rose.Band.Label, err)
		}
		result.Bands = append(result.Bands, BandArtifact{
			Band:     rose.Band,
			Filename: rose.Band.ArtifactName() + ".png",
			PNG:      png,
		})
	}
	return nil
}

// publishSummary is best-effort: a publish failure is logged and counted but
// never fails the request.
func (p *Pipeline) publishSummary(ctx context.Context, summary domain.RenderSummary) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, summary); err != nil {
		p.metrics.SummaryPublishErrors.Inc()
		p.logger.Warn("summary publish failed", "error", err)
	}
}

func countNonEmpty(roses []domain.Rose) int {
	n := 0
	for _, r := range roses {
		if !r.Empty() {
			n++
		}
	}
	return n
}
