package dataset

import (
	"github.com/KaramelBytes/housing-cli/internal/normalize"
)

// CleanStats records what cleaning did to a dataset.
type CleanStats struct {
	Loaded  int
	Kept    int
	Dropped int
	// NullCounts holds absent values per column after cleaning, before filtering.
	NullCounts map[string]int
}

// Clean normalizes the four target columns in place: Price through
// normalize.Price, the bedroom, bathroom and floor-area columns through
// normalize.Count. Every cell of every target column is replaced before the
// call returns.
func Clean(d *Dataset) error {
	if err := d.RequireColumns(RequiredColumns...); err != nil {
		return err
	}
	cleaners := map[int]func(string) normalize.Number{
		d.Index(ColPrice):     normalize.Price,
		d.Index(ColBedrooms):  normalize.Count,
		d.Index(ColBathrooms): normalize.Count,
		d.Index(ColFloorArea): normalize.Count,
	}
	for _, row := range d.Rows {
		for idx, fn := range cleaners {
			c := row[idx]
			if c.Cleaned {
				c.Num = fn(c.Num.String())
			} else if c.Null {
				c.Num = normalize.Missing
			} else {
				c.Num = fn(c.Raw)
			}
			c.Cleaned = true
			row[idx] = c
		}
	}
	return nil
}

// DropIncomplete removes every row where any of the named columns has no
// value, keeping order, and returns how many rows were removed.
func DropIncomplete(d *Dataset, cols ...string) int {
	idxs := make([]int, 0, len(cols))
	for _, c := range cols {
		if i := d.Index(c); i >= 0 {
			idxs = append(idxs, i)
		}
	}
	kept := d.Rows[:0]
	for _, row := range d.Rows {
		complete := true
		for _, i := range idxs {
			if !row[i].Number().Valid {
				complete = false
				break
			}
		}
		if complete {
			kept = append(kept, row)
		}
	}
	removed := len(d.Rows) - len(kept)
	for i := len(kept); i < len(d.Rows); i++ {
		d.Rows[i] = nil
	}
	d.Rows = kept
	return removed
}

// LoadClean loads path, cleans the target columns and drops incomplete rows.
// preview holds a copy of the first previewRows cleaned rows before filtering.
func LoadClean(path string, opt LoadOptions, previewRows int) (d *Dataset, stats CleanStats, preview *Dataset, err error) {
	d, err = Load(path, opt)
	if err != nil {
		return nil, stats, nil, err
	}
	stats, preview, err = CleanAndFilter(d, previewRows)
	if err != nil {
		return nil, stats, nil, err
	}
	return d, stats, preview, nil
}

// CleanAndFilter cleans d in place, records null counts, copies the first
// previewRows rows and then drops rows missing any cleaned column.
func CleanAndFilter(d *Dataset, previewRows int) (stats CleanStats, preview *Dataset, err error) {
	if err = Clean(d); err != nil {
		return stats, nil, err
	}
	stats.Loaded = d.Len()
	stats.NullCounts = make(map[string]int, len(d.Columns))
	for i, n := range d.NullCounts() {
		stats.NullCounts[d.Columns[i]] = n
	}
	preview = d.Head(previewRows)
	stats.Dropped = DropIncomplete(d, CleanedColumns...)
	stats.Kept = d.Len()
	return stats, preview, nil
}
