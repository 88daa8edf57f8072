// Package fileutil holds small file-reading helpers shared by the
// statement-file sources.
package fileutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// CSVReader streams a CSV statement export row by row so large files never
// need to be held in memory at once.
type CSVReader struct {
	Path  string
	Comma rune // field delimiter, ',' when zero
}

// NewCSVReader returns a reader for the CSV file at path.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{Path: path, Comma: ','}
}

// Header reads only the header row of the file.
func (r *CSVReader) Header() ([]string, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	header, err := r.newReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	return header, nil
}

// ForEachRow calls fn for every data row, skipping the header. A non-nil
// error from fn stops the iteration.
func (r *CSVReader) ForEachRow(fn func(row []string) error) error {
	f, err := os.Open(r.Path)
	if err != nil {
		return fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	reader := r.newReader(f)
	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("reading csv header: %w", err)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading csv row: %w", err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

func (r *CSVReader) newReader(f *os.File) *csv.Reader {
	reader := csv.NewReader(f)
	if r.Comma != 0 {
		reader.Comma = r.Comma
	}
	// Bank exports are not always rectangular.
	reader.FieldsPerRecord = -1
	return reader
}
