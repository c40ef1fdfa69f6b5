// Package store exports cleaned listings to CSV files or SQL databases.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/housing-cli/internal/dataset"
)

// Sink receives the cleaned dataset of one run.
type Sink interface {
	Write(ctx context.Context, runID string, d *dataset.Dataset) error
	Close() error
}

// Kinds accepted by Open.
const (
	KindCSV      = "csv"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// Open returns the sink for kind. target is a file path for csv and sqlite,
// and a connection string for postgres.
func Open(ctx context.Context, kind, target string) (Sink, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("export target is required for %s", kind)
	}
	kind = strings.ToLower(kind)
	switch kind {
	case KindCSV:
		return NewCSVSink(target), nil
	case KindSQLite, KindPostgres, "postgresql":
		d := SQLite
		if kind != KindSQLite {
			d = Postgres
		}
		s, err := OpenSQL(ctx, d, target)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown export kind %q (want csv, sqlite or postgres)", kind)
}

// cellText renders c for export. Absent values become "".
func cellText(c dataset.Cell) string {
	switch {
	case c.Cleaned:
		return c.Num.String()
	case c.Null:
		return ""
	}
	return c.Raw
}
