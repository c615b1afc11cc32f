package domain

import "errors"

// ErrNoData reports that no uploaded file contributed any usable wind data.
// Callers must treat it as "nothing to render", not as an empty-but-valid
// dataset.
var ErrNoData = errors.New("no usable wind data in any uploaded file")

// Combine merges per-file normalization results into the unified dataset.
// Concatenation preserves upload order among files and row order within a
// file; duplicate timestamps from overlapping files are retained. The second
// return value lists non-contributing files, in upload order, for the
// caller's warning report. When every file is non-contributing the returned
// error is ErrNoData and the name list covers all files.
func Combine(files []FileResult) (Dataset, []string, error) {
	var ds Dataset
	var skipped []string

	for _, f := range files {
		if !f.Contributing() {
			skipped = append(skipped, f.Name)
			continue
		}
		ds.Rows = append(ds.Rows, f.Rows...)
	}

	if len(ds.Rows) == 0 {
		return Dataset{}, skipped, ErrNoData
	}
	return ds, skipped, nil
}
