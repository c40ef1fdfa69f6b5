// Package dataset loads the listings table and cleans its text-encoded numeric columns.
package dataset

import (
	"github.com/KaramelBytes/housing-cli/internal/normalize"
)

// Column names of the fixed listings layout.
const (
	ColPrice        = "Price"
	ColBedrooms     = "Number of Bedrooms"
	ColBathrooms    = "Number of Bathrooms"
	ColFloorArea    = "Floor Area (m2)"
	ColPropertyType = "Property Type"
	ColCounty       = "County"
	ColLatitude     = "Latitude"
	ColLongitude    = "Longitude"
	ColViews        = "Listing Views"
	ColConstruction = "Date of Construction"
)

// CleanedColumns are replaced by normalized numbers and must be present for a row to survive.
var CleanedColumns = []string{ColPrice, ColBedrooms, ColBathrooms, ColFloorArea}

// RequiredColumns must exist before cleaning starts.
var RequiredColumns = []string{ColPrice, ColBedrooms, ColBathrooms, ColFloorArea, ColPropertyType, ColCounty}

// Cell is one value of the table. Raw keeps the source text. Cleaned cells
// carry the normalized number in Num.
type Cell struct {
	Raw     string
	Null    bool
	Num     normalize.Number
	Cleaned bool
}

// NewCell builds a cell from source text, recognising null markers.
func NewCell(raw string) Cell {
	return Cell{Raw: raw, Null: normalize.IsNull(raw)}
}

// Number returns the numeric value of the cell. Cleaned cells return the
// normalized value; other cells are parsed from their text.
func (c Cell) Number() normalize.Number {
	if c.Cleaned {
		return c.Num
	}
	if c.Null {
		return normalize.Missing
	}
	return normalize.Parse(c.Raw)
}

// String renders the cell for display.
func (c Cell) String() string {
	if c.Cleaned {
		if !c.Num.Valid {
			return "NaN"
		}
		return c.Num.String()
	}
	if c.Null {
		return "NaN"
	}
	return c.Raw
}

// Dataset is an ordered, in-memory table sharing one header.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]Cell
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Index returns the position of the first column with the given name, or -1.
func (d *Dataset) Index(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the column exists.
func (d *Dataset) Has(name string) bool { return d.Index(name) >= 0 }

// RequireColumns returns a *SchemaError naming every absent column.
func (d *Dataset) RequireColumns(names ...string) error {
	var missing []string
	for _, n := range names {
		if !d.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Dataset: d.Name, Missing: missing}
	}
	return nil
}

// Numbers returns the numeric view of a column, one entry per row.
func (d *Dataset) Numbers(name string) ([]normalize.Number, error) {
	idx := d.Index(name)
	if idx < 0 {
		return nil, &SchemaError{Dataset: d.Name, Missing: []string{name}}
	}
	out := make([]normalize.Number, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[idx].Number()
	}
	return out, nil
}

// Texts returns the text view of a column; null cells are reported as absent.
func (d *Dataset) Texts(name string) ([]string, []bool, error) {
	idx := d.Index(name)
	if idx < 0 {
		return nil, nil, &SchemaError{Dataset: d.Name, Missing: []string{name}}
	}
	vals := make([]string, len(d.Rows))
	present := make([]bool, len(d.Rows))
	for i, row := range d.Rows {
		c := row[idx]
		if c.Cleaned {
			vals[i], present[i] = c.Num.String(), c.Num.Valid
			continue
		}
		vals[i], present[i] = c.Raw, !c.Null
	}
	return vals, present, nil
}

// Head returns a copy holding the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	if n < 0 {
		n = 0
	}
	cp := &Dataset{Name: d.Name, Columns: append([]string(nil), d.Columns...), Rows: make([][]Cell, n)}
	for i := 0; i < n; i++ {
		cp.Rows[i] = append([]Cell(nil), d.Rows[i]...)
	}
	return cp
}

// NullCounts returns the number of absent values per column, in column order.
func (d *Dataset) NullCounts() []int {
	out := make([]int, len(d.Columns))
	for _, row := range d.Rows {
		for j, c := range row {
			if c.Cleaned && !c.Num.Valid || !c.Cleaned && c.Null {
				out[j]++
			}
		}
	}
	return out
}

// DropColumns removes the named columns. Unknown names are ignored.
func (d *Dataset) DropColumns(names ...string) {
	if len(names) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	keep := make([]int, 0, len(d.Columns))
	cols := make([]string, 0, len(d.Columns))
	for i, c := range d.Columns {
		if _, ok := drop[c]; ok {
			continue
		}
		keep = append(keep, i)
		cols = append(cols, c)
	}
	if len(keep) == len(d.Columns) {
		return
	}
	for r, row := range d.Rows {
		nr := make([]Cell, len(keep))
		for k, idx := range keep {
			nr[k] = row[idx]
		}
		d.Rows[r] = nr
	}
	d.Columns = cols
}
