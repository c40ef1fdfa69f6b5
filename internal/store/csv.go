package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/KaramelBytes/housing-cli/internal/dataset"
	"github.com/KaramelBytes/housing-cli/internal/utils"
)

// CSVSink writes the dataset, header first, to a CSV file.
type CSVSink struct {
	path string
}

func NewCSVSink(path string) *CSVSink { return &CSVSink{path: path} }

// Write replaces the file atomically. runID is not part of the CSV layout.
func (s *CSVSink) Write(ctx context.Context, _ string, d *dataset.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(d.Columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	rec := make([]string, len(d.Columns))
	for _, row := range d.Rows {
		for i, c := range row {
			rec[i] = cellText(c)
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return utils.SafeWriteFile(s.path, buf.Bytes())
}

func (s *CSVSink) Close() error { return nil }
