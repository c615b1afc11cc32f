package domain

import (
	"fmt"
	"strings"
)

// MalformedFileError reports a line that does not split into the fixed
// twelve-column schema. It is fatal to the whole request: a structurally
// broken file must be rejected with its name, not partially ingested.
type MalformedFileError struct {
	File   string
	Line   int
	Fields int
}

func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("malformed file %q: line %d has %d fields, want %d",
		e.File, e.Line, e.Fields, FieldCount)
}

// ParseFile decodes one raw observation file into an ordered sequence of
// records. The first line is a header and is discarded without validation;
// its content is replaced by the positional schema. Blank lines are skipped.
// The name is used only for error reporting.
func ParseFile(name string, data []byte) ([]RawRecord, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	records := make([]RawRecord, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ";")
		if len(fields) != FieldCount {
			return nil, &MalformedFileError{File: name, Line: i + 1, Fields: len(fields)}
		}

		records = append(records, RawRecord{
			Date:          fields[0],
			Time:          fields[1],
			Temperature:   fields[2],
			Humidity:      fields[3],
			Pressure:      fields[4],
			WindSpeed:     fields[5],
			WindDirection: fields[6],
			Cloudiness:    fields[7],
			Insolation:    fields[8],
			MaxTemp:       fields[9],
			MinTemp:       fields[10],
			Rainfall:      fields[11],
		})
	}

	return records, nil
}
