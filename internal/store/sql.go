package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/housing-cli/internal/dataset"
)

// Dialect captures the differences between the supported SQL backends.
type Dialect struct {
	Name   string
	Driver string
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder func(n int) string
	RealType    string
}

var (
	SQLite = Dialect{
		Name:        KindSQLite,
		Driver:      "sqlite",
		Placeholder: func(int) string { return "?" },
		RealType:    "REAL",
	}
	Postgres = Dialect{
		Name:        KindPostgres,
		Driver:      "postgres",
		Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		RealType:    "DOUBLE PRECISION",
	}
)

// field maps a dataset column onto a listings table column.
type field struct {
	column  string
	source  string
	numeric bool
}

var listingFields = []field{
	{"price", dataset.ColPrice, true},
	{"bedrooms", dataset.ColBedrooms, true},
	{"bathrooms", dataset.ColBathrooms, true},
	{"floor_area", dataset.ColFloorArea, true},
	{"property_type", dataset.ColPropertyType, false},
	{"county", dataset.ColCounty, false},
	{"latitude", dataset.ColLatitude, true},
	{"longitude", dataset.ColLongitude, true},
	{"listing_views", dataset.ColViews, true},
	{"date_of_construction", dataset.ColConstruction, false},
}

// batchSize bounds the rows per INSERT statement.
const batchSize = 200

// SQLSink writes listings into a database table named listings.
type SQLSink struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQL connects, checks the connection and creates the listings table if absent.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLSink, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", dialect.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", dialect.Name, err)
	}
	s := &SQLSink{db: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", dialect.Name, err)
	}
	return s, nil
}

// DB exposes the underlying handle.
func (s *SQLSink) DB() *sql.DB { return s.db }

func (s *SQLSink) migrate(ctx context.Context) error {
	defs := []string{"run_id TEXT NOT NULL", "row_num INTEGER NOT NULL"}
	for _, f := range listingFields {
		typ := "TEXT"
		if f.numeric {
			typ = s.dialect.RealType
		}
		defs = append(defs, f.column+" "+typ)
	}
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS listings (" + strings.Join(defs, ", ") + ", PRIMARY KEY (run_id, row_num))",
		"CREATE INDEX IF NOT EXISTS idx_listings_county ON listings(county)",
		"CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price)",
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Write inserts every row of d under runID inside one transaction.
// Columns missing from d are stored as NULL.
func (s *SQLSink) Write(ctx context.Context, runID string, d *dataset.Dataset) error {
	idx := make([]int, len(listingFields))
	for i, f := range listingFields {
		idx[i] = d.Index(f.source)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.dialect.Name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	for start := 0; start < d.Len(); start += batchSize {
		end := start + batchSize
		if end > d.Len() {
			end = d.Len()
		}
		query, args := s.insert(runID, d, idx, start, end)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%s: insert rows %d-%d: %w", s.dialect.Name, start, end-1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.dialect.Name, err)
	}
	return nil
}

func (s *SQLSink) insert(runID string, d *dataset.Dataset, idx []int, start, end int) (string, []any) {
	cols := []string{"run_id", "row_num"}
	for _, f := range listingFields {
		cols = append(cols, f.column)
	}
	var b strings.Builder
	b.WriteString("INSERT INTO listings (" + strings.Join(cols, ", ") + ") VALUES ")
	args := make([]any, 0, (end-start)*len(cols))
	n := 0
	for r := start; r < end; r++ {
		if r > start {
			b.WriteString(", ")
		}
		b.WriteString("(")
		row := d.Rows[r]
		vals := []any{runID, r}
		for i, f := range listingFields {
			vals = append(vals, value(row, idx[i], f.numeric))
		}
		for i, v := range vals {
			if i > 0 {
				b.WriteString(", ")
			}
			n++
			b.WriteString(s.dialect.Placeholder(n))
			args = append(args, v)
		}
		b.WriteString(")")
	}
	return b.String(), args
}

func value(row []dataset.Cell, i int, numeric bool) any {
	if i < 0 {
		return nil
	}
	c := row[i]
	if numeric {
		if v, ok := c.Number().Float64(); ok {
			return v
		}
		return nil
	}
	if c.Null {
		return nil
	}
	return c.Raw
}

func (s *SQLSink) Close() error { return s.db.Close() }
