// Command rose runs the wind-rose pipeline offline: it reads INMET-style
// observation CSVs from disk and writes the combined figure plus one PNG per
// non-empty speed band.
//
// Usage:
//
//	go run ./cmd/rose -out ./charts station_2023.csv station_2024.csv
//
// Exit codes: 1 for malformed input or render failure, 2 when no file
// contributes any usable wind data.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/brisalabs/windrose-service/internal/adapter/render"
	"github.com/brisalabs/windrose-service/internal/domain"
	"github.com/brisalabs/windrose-service/internal/observability"
	"github.com/brisalabs/windrose-service/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	outDir := flag.String("out", ".", "directory for the generated PNG files")
	panelSize := flag.Int("panel-size", 1200, "square panel edge in pixels (1200 = 4in at 300 DPI)")
	sectors := flag.Int("sectors", domain.DefaultSectors, "compass sector count")
	speedBins := flag.Int("speed-bins", domain.DefaultSpeedBins, "speed sub-bins per band")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "missing input files")
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	files := make([]pipeline.InputFile, 0, flag.NArg())
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
			return 1
		}
		files = append(files, pipeline.InputFile{Name: filepath.Base(path), Data: data})
	}

	renderer := render.New(*panelSize, logger)
	p := pipeline.New(renderer, nil, logger, observability.NewMetricsForTesting(), *sectors, *speedBins)

	result, err := p.Render(context.Background(), files, pipeline.RenderOptions{PerBand: true})
	if err != nil {
		var noData *pipeline.NoDataError
		if errors.As(err, &noData) {
			fmt.Println("no valid data: none of the uploaded files contain usable wind measurements")
			for _, name := range noData.Skipped {
				fmt.Printf("  skipped: %s\n", name)
			}
			return 2
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	artifacts := append([]pipeline.BandArtifact{
		{Filename: pipeline.CombinedFilename, PNG: result.Combined},
	}, result.Bands...)
	for _, a := range artifacts {
		path := filepath.Join(*outDir, a.Filename)
		if err := os.WriteFile(path, a.PNG, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("wrote %s\n", path)
	}

	fmt.Printf("accepted %d file(s), %d observation(s)\n", result.FilesAccepted, result.Rows)
	if len(result.FilesSkipped) > 0 {
		fmt.Printf("warning: no usable wind data in: %v\n", result.FilesSkipped)
	}
	if dropped := result.RowsDropped.Total(); dropped > 0 {
		fmt.Printf("note: %d row(s) dropped during normalization\n", dropped)
	}
	return 0
}
