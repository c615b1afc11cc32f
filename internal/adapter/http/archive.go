package http

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/brisalabs/windrose-service/internal/pipeline"
)

// buildArchive packs the combined figure and the per-band artifacts into one
// zip. Band entries use the label-derived artifact names.
func buildArchive(result pipeline.Result) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct {
		name string
		data []byte
	}{{pipeline.CombinedFilename, result.Combined}}
	for _, band := range result.Bands {
		entries = append(entries, struct {
			name string
			data []byte
		}{band.Filename, band.PNG})
	}

	for _, e := range entries {
		f, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %q: %w", e.name, err)
		}
		if _, err := f.Write(e.data); err != nil {
			return nil, fmt.Errorf("write archive entry %q: %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
