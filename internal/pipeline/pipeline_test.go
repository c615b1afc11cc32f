package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brisalabs/windrose-service/internal/domain"
	"github.com/brisalabs/windrose-service/internal/observability"
	"github.com/brisalabs/windrose-service/internal/pipeline"
)

// --- mocks ---

type mockRenderer struct {
	combinedCalls [][]domain.Rose
	bandCalls     []domain.Rose
	err           error
}

func (m *mockRenderer) RenderCombined(_ context.Context, roses []domain.Rose) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.combinedCalls = append(m.combinedCalls, roses)
	return []byte("png-combined"), nil
}

func (m *mockRenderer) RenderBand(_ context.Context, rose domain.Rose) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.bandCalls = append(m.bandCalls, rose)
	return []byte("png-" + rose.Band.Label), nil
}

type mockPublisher struct {
	summaries []domain.RenderSummary
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, s domain.RenderSummary) error {
	if m.err != nil {
		return m.err
	}
	m.summaries = append(m.summaries, s)
	return nil
}

// --- fixtures ---

const csvHeader = "Data;Hora (UTC);Temp;Umidade;Pressao;Vel. Vento;Dir. Vento;Nebulosidade;Insolacao;Temp Max;Temp Min;Chuva"

// csvRow builds one observation line with the given wind columns.
func csvRow(hhmm, speed, direction string) string {
	return fmt.Sprintf("26/04/2024;%s;20,0;50;1010,0;%s;%s;5;2,0;25,0;15,0;0,0", hhmm, speed, direction)
}

func csvFile(rows ...string) []byte {
	data := csvHeader
	for _, r := range rows {
		data += "\n" + r
	}
	return []byte(data + "\n")
}

func newTestPipeline(r pipeline.Renderer, pub pipeline.SummaryPublisher) *pipeline.Pipeline {
	return pipeline.New(r, pub, slog.Default(), observability.NewMetricsForTesting(),
		domain.DefaultSectors, domain.DefaultSpeedBins)
}

// --- tests ---

func TestRender_HappyPath(t *testing.T) {
	// Speeds 5,0 and 10,5 m/s convert to ~9.72 kt and ~20.41 kt; the empty
	// speed drops its row. Two bands populate: [6,10) and [16,20).
	files := []pipeline.InputFile{{
		Name: "station.csv",
		Data: csvFile(
			csvRow("0000", "5,0", "180,0"),
			csvRow("0100", "10,5", "90,0"),
			csvRow("0200", "", "45,0"),
		),
	}}

	renderer := &mockRenderer{}
	p := newTestPipeline(renderer, nil)

	result, err := p.Render(context.Background(), files, pipeline.RenderOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesAccepted)
	assert.Empty(t, result.FilesSkipped)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 1, result.RowsDropped.Numeric)
	assert.Equal(t, []byte("png-combined"), result.Combined)

	require.Len(t, renderer.combinedCalls, 1)
	roses := renderer.combinedCalls[0]
	require.Len(t, roses, 2)
	assert.Equal(t, "Velocidade: 6-10 kt", roses[0].Band.Label)
	assert.Equal(t, "Velocidade: 16-20 kt", roses[1].Band.Label)
	assert.Empty(t, renderer.bandCalls, "per-band rendering is opt-in")
}

func TestRender_EmptyFileSkippedOthersRender(t *testing.T) {
	fileA := pipeline.InputFile{Name: "a.csv", Data: csvFile(
		csvRow("0000", "", "180,0"),
		csvRow("0100", "", "90,0"),
		csvRow("0200", "", "45,0"),
		csvRow("0300", "", "10,0"),
		csvRow("0400", "", "350,0"),
	)}
	fileB := pipeline.InputFile{Name: "b.csv", Data: csvFile(
		csvRow("0000", "5,0", "180,0"),
	)}

	renderer := &mockRenderer{}
	p := newTestPipeline(renderer, nil)

	result, err := p.Render(context.Background(), []pipeline.InputFile{fileA, fileB}, pipeline.RenderOptions{})

	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a.csv"}, result.FilesSkipped); diff != "" {
		t.Fatalf("skipped files mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, result.Rows)
	require.Len(t, renderer.combinedCalls, 1)
}

func TestRender_AllFilesEmpty(t *testing.T) {
	files := []pipeline.InputFile{
		{Name: "a.csv", Data: csvFile(csvRow("0000", "", "180,0"))},
		{Name: "b.csv", Data: csvFile(csvRow("0000", "5,0", ""))},
	}

	renderer := &mockRenderer{}
	publisher := &mockPublisher{}
	p := newTestPipeline(renderer, publisher)

	result, err := p.Render(context.Background(), files, pipeline.RenderOptions{})

	var noData *pipeline.NoDataError
	require.ErrorAs(t, err, &noData)
	assert.ErrorIs(t, err, domain.ErrNoData)
	assert.Equal(t, []string{"a.csv", "b.csv"}, noData.Skipped)
	assert.Equal(t, []string{"a.csv", "b.csv"}, result.FilesSkipped)

	// Processing halts before rendering and publishing.
	assert.Empty(t, renderer.combinedCalls)
	assert.Empty(t, renderer.bandCalls)
	assert.Empty(t, publisher.summaries)
}

func TestRender_SingleRowSingleBand(t *testing.T) {
	// 3,7 m/s -> ~7.19 kt: only the [6,10) band populates, and the
	// combined figure gets exactly one panel.
	files := []pipeline.InputFile{{
		Name: "station.csv",
		Data: csvFile(csvRow("0000", "3,7", "45,0")),
	}}

	renderer := &mockRenderer{}
	p := newTestPipeline(renderer, nil)

	result, err := p.Render(context.Background(), files, pipeline.RenderOptions{PerBand: true})

	require.NoError(t, err)
	require.Len(t, renderer.combinedCalls, 1)
	require.Len(t, renderer.combinedCalls[0], 1)
	assert.Equal(t, "Velocidade: 6-10 kt", renderer.combinedCalls[0][0].Band.Label)

	require.Len(t, result.Bands, 1)
	assert.Equal(t, "Velocidade_6-10_kt.png", result.Bands[0].Filename)
	assert.Equal(t, 1, result.Summary.BandCounts["Velocidade: 6-10 kt"])
	assert.Equal(t, 0, result.Summary.BandCounts["Velocidade: 1-5 kt"])
}

func TestRender_MalformedFileAbortsRequest(t *testing.T) {
	files := []pipeline.InputFile{
		{Name: "good.csv", Data: csvFile(csvRow("0000", "5,0", "180,0"))},
		{Name: "broken.csv", Data: []byte(csvHeader + "\n26/04/2024;0000;truncated\n")},
	}

	renderer := &mockRenderer{}
	p := newTestPipeline(renderer, nil)

	_, err := p.Render(context.Background(), files, pipeline.RenderOptions{})

	var malformed *domain.MalformedFileError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "broken.csv", malformed.File)
	assert.Empty(t, renderer.combinedCalls)
}

func TestRender_PerBandArtifacts(t *testing.T) {
	// 1,0 m/s -> 1.94 kt (band 1) and 17,0 m/s -> 33.05 kt (top band).
	files := []pipeline.InputFile{{
		Name: "station.csv",
		Data: csvFile(
			csvRow("0000", "1,0", "0,0"),
			csvRow("0100", "17,0", "200,0"),
		),
	}}

	renderer := &mockRenderer{}
	p := newTestPipeline(renderer, nil)

	result, err := p.Render(context.Background(), files, pipeline.RenderOptions{PerBand: true})

	require.NoError(t, err)
	require.Len(t, result.Bands, 2)
	assert.Equal(t, "Velocidade_1-5_kt.png", result.Bands[0].Filename)
	assert.Equal(t, "Velocidade_>_30_kt.png", result.Bands[1].Filename)
	assert.Len(t, renderer.bandCalls, 2)
}

func TestRender_PublishesSummary(t *testing.T) {
	files := []pipeline.InputFile{{
		Name: "station.csv",
		Data: csvFile(csvRow("0000", "5,0", "180,0")),
	}}

	publisher := &mockPublisher{}
	p := newTestPipeline(&mockRenderer{}, publisher)

	_, err := p.Render(context.Background(), files, pipeline.RenderOptions{})

	require.NoError(t, err)
	require.Len(t, publisher.summaries, 1)
	summary := publisher.summaries[0]
	assert.Equal(t, 1, summary.FilesAccepted)
	assert.Equal(t, 1, summary.Rows)
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestRender_PublishFailureDoesNotFailRequest(t *testing.T) {
	files := []pipeline.InputFile{{
		Name: "station.csv",
		Data: csvFile(csvRow("0000", "5,0", "180,0")),
	}}

	publisher := &mockPublisher{err: errors.New("broker down")}
	p := newTestPipeline(&mockRenderer{}, publisher)

	result, err := p.Render(context.Background(), files, pipeline.RenderOptions{})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Combined)
}

func TestRender_RendererFailure(t *testing.T) {
	files := []pipeline.InputFile{{
		Name: "station.csv",
		Data: csvFile(csvRow("0000", "5,0", "180,0")),
	}}

	p := newTestPipeline(&mockRenderer{err: errors.New("canvas exploded")}, nil)

	_, err := p.Render(context.Background(), files, pipeline.RenderOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "render combined figure")
}

func TestCheckReadiness(t *testing.T) {
	p := newTestPipeline(&mockRenderer{}, nil)

	require.Error(t, p.CheckReadiness(context.Background()))

	require.NoError(t, p.WarmUp(context.Background()))
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestWarmUp_RendererFailure(t *testing.T) {
	p := newTestPipeline(&mockRenderer{err: errors.New("no fonts")}, nil)

	require.Error(t, p.WarmUp(context.Background()))
	assert.Error(t, p.CheckReadiness(context.Background()))
}
