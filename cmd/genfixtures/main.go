// Command genfixtures writes synthetic INMET-style observation CSVs for
// manual testing of the windrose pipeline. It generates one well-formed file
// with a dominant wind direction, one file whose wind columns are entirely
// empty, and one structurally malformed file, then round-trips the valid
// file through the domain package to report expected pipeline numbers.
//
// Usage:
//
//	go run ./cmd/genfixtures -out ./testdata -rows 500 -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/brisalabs/windrose-service/internal/domain"
)

var baseDate = time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

const header = "Data;Hora (UTC);Temp;Umidade;Pressao;Vel. Vento;Dir. Vento;Nebulosidade;Insolacao;Temp Max;Temp Min;Chuva"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "testdata", "output directory")
	rows := flag.Int("rows", 500, "observation rows in the valid fixture")
	seed := flag.Int64("seed", 1, "PRNG seed for reproducible fixtures")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	// Freeze the domain clock so summary stamps in any downstream use of
	// these fixtures are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(baseDate))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))

	fixtures := map[string]string{
		"station_valid.csv":      validFixture(rng, *rows),
		"station_empty_wind.csv": emptyWindFixture(*rows / 10),
		"station_malformed.csv":  malformedFixture(),
	}
	for name, content := range fixtures {
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}

	return report(*outDir)
}

// validFixture produces rows with a prevailing north-easterly wind and a
// speed distribution that populates the lower bands densely and the upper
// bands sparsely, mirroring real station data.
func validFixture(rng *rand.Rand, rows int) string {
	var b strings.Builder
	b.WriteString(header + "\n")

	for i := 0; i < rows; i++ {
		ts := baseDate.Add(time.Duration(i) * time.Hour)

		// Speeds in m/s; the occasional gale pushes rows into the top bands.
		speed := rng.Float64() * 6
		if rng.Intn(20) == 0 {
			speed = 10 + rng.Float64()*10
		}
		direction := math.Mod(45+rng.NormFloat64()*40+360, 360)

		fmt.Fprintf(&b, "%s;%s;%s;%d;%s;%s;%s;%d;%s;%s;%s;%s\n",
			ts.Format("02/01/2006"),
			ts.Format("1504"),
			decimalComma(15+rng.Float64()*15),
			40+rng.Intn(55),
			decimalComma(1000+rng.Float64()*30),
			decimalComma(speed),
			decimalComma(direction),
			rng.Intn(10),
			decimalComma(rng.Float64()*10),
			decimalComma(25+rng.Float64()*10),
			decimalComma(10+rng.Float64()*10),
			decimalComma(rng.Float64()*5),
		)
	}
	return b.String()
}

// emptyWindFixture produces structurally valid rows whose wind-speed column
// is entirely blank, which must classify the whole file non-contributing.
func emptyWindFixture(rows int) string {
	var b strings.Builder
	b.WriteString(header + "\n")
	for i := 0; i < rows; i++ {
		ts := baseDate.Add(time.Duration(i) * time.Hour)
		fmt.Fprintf(&b, "%s;%s;20,0;50;1010,0;;180,0;5;2,0;25,0;15,0;0,0\n",
			ts.Format("02/01/2006"), ts.Format("1504"))
	}
	return b.String()
}

// malformedFixture produces a file whose third line is missing columns.
func malformedFixture() string {
	return header + "\n" +
		"01/04/2024;0000;20,0;50;1010,0;5,0;180,0;5;2,0;25,0;15,0;0,0\n" +
		"01/04/2024;0100;20,0;50\n"
}

// report round-trips the valid fixture through parse/normalize/partition and
// prints the numbers a pipeline run over these fixtures should produce.
func report(outDir string) error {
	data, err := os.ReadFile(filepath.Join(outDir, "station_valid.csv"))
	if err != nil {
		return err
	}
	records, err := domain.ParseFile("station_valid.csv", data)
	if err != nil {
		return err
	}

	fr := domain.NormalizeFile("station_valid.csv", records)
	ds, skipped, err := domain.Combine([]domain.FileResult{fr})
	if err != nil {
		return err
	}

	fmt.Printf("expected: %d rows, %d dropped, %d skipped files\n",
		ds.Len(), fr.Dropped.Total(), len(skipped))
	for _, sub := range domain.Partition(ds) {
		fmt.Printf("  %-22s %d\n", sub.Band.Label, len(sub.Rows))
	}
	return nil
}

// decimalComma formats a float with the Brazilian locale comma used by the
// input format.
func decimalComma(v float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.1f", v), ".", ",")
}
