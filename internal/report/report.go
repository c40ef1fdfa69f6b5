// Package report prints console diagnostics for a pipeline run.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/housing-cli/internal/analysis"
	"github.com/KaramelBytes/housing-cli/internal/dataset"
	"github.com/KaramelBytes/housing-cli/internal/pipeline"
)

var heading = color.New(color.FgYellow, color.Bold)

// Printer writes diagnostic tables to w.
type Printer struct {
	w io.Writer
}

func New(w io.Writer) *Printer { return &Printer{w: w} }

func (p *Printer) title(s string) {
	heading.Fprintf(p.w, "\n%s\n", s)
}

func (p *Printer) table(header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(p.w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	return t
}

// Run prints the diagnostics selected by verbosity: 0 prints nothing,
// 1 prints row counts, missing values, low-correlation columns and the
// summary, and 2 adds the preview rows, column info and the full matrix.
func (p *Printer) Run(res *pipeline.Result, verbosity int) {
	if verbosity <= 0 || res == nil {
		return
	}
	if verbosity >= 2 && res.Preview != nil {
		p.Head(res.Preview)
	}
	p.NullCounts(res)
	if verbosity >= 2 && res.Dataset != nil {
		p.Info(res.Dataset)
	}
	if verbosity >= 2 && res.Corr != nil {
		p.Correlation(res.Corr)
	}
	p.LowCorrelated(res.LowCorrelated, res.Threshold, res.Dropped)
	p.Summary(res.Summary)
}

// Head prints the rows of d.
func (p *Printer) Head(d *dataset.Dataset) {
	p.title(fmt.Sprintf("First %d rows after cleaning", d.Len()))
	t := p.table(d.Columns)
	for _, row := range d.Rows {
		vals := make([]string, len(row))
		for i, c := range row {
			vals[i] = c.String()
		}
		t.Append(vals)
	}
	t.Render()
}

// NullCounts prints the per-column missing counts recorded by cleaning.
func (p *Printer) NullCounts(res *pipeline.Result) {
	p.title(fmt.Sprintf("Null values after cleaning (%d loaded, %d kept, %d dropped)", res.Stats.Loaded, res.Stats.Kept, res.Stats.Dropped))
	cols := []string{}
	if res.Preview != nil {
		cols = res.Preview.Columns
	} else if res.Dataset != nil {
		cols = res.Dataset.Columns
	}
	t := p.table([]string{"Column", "Nulls"})
	for _, c := range cols {
		t.Append([]string{c, strconv.Itoa(res.Stats.NullCounts[c])})
	}
	t.Render()
}

// Info prints each column with its non-null count and inferred kind.
func (p *Printer) Info(d *dataset.Dataset) {
	p.title(fmt.Sprintf("Dataset info: %d rows x %d columns", d.Len(), len(d.Columns)))
	t := p.table([]string{"#", "Column", "Non-Null", "Kind"})
	nulls := d.NullCounts()
	for i, c := range d.Columns {
		t.Append([]string{strconv.Itoa(i), c, strconv.Itoa(d.Len() - nulls[i]), kind(d, i)})
	}
	t.Render()
}

func kind(d *dataset.Dataset, col int) string {
	seen := false
	for _, row := range d.Rows {
		c := row[col]
		if c.Cleaned {
			return "number"
		}
		if c.Null {
			continue
		}
		seen = true
		if !c.Number().Valid {
			return "text"
		}
	}
	if !seen {
		return "empty"
	}
	return "number"
}

// Correlation prints the full matrix; undefined entries show as NaN.
func (p *Printer) Correlation(m *analysis.CorrMatrix) {
	p.title("Correlation matrix")
	t := p.table(append([]string{""}, m.Columns...))
	for i, c := range m.Columns {
		row := []string{c}
		for _, v := range m.Values[i] {
			if r, ok := v.Float64(); ok {
				row = append(row, strconv.FormatFloat(r, 'f', 3, 64))
			} else {
				row = append(row, "NaN")
			}
		}
		t.Append(row)
	}
	t.Render()
}

// LowCorrelated prints the weakly correlated columns and any that were dropped.
func (p *Printer) LowCorrelated(cols []string, threshold float64, dropped []string) {
	p.title(fmt.Sprintf("Columns with |r| < %.2f against %s", threshold, dataset.ColPrice))
	if len(cols) == 0 {
		fmt.Fprintln(p.w, "none")
		return
	}
	for _, c := range cols {
		fmt.Fprintf(p.w, "- %s\n", c)
	}
	if len(dropped) > 0 {
		color.New(color.FgRed).Fprintf(p.w, "dropped from dataset: %v\n", dropped)
	}
}

// Summary prints the aggregates fed to the prompt.
func (p *Printer) Summary(s analysis.Summary) {
	p.title("Summary statistics")
	t := p.table([]string{"Statistic", "Value"})
	t.Append([]string{"Rows", strconv.Itoa(s.Rows)})
	t.Append([]string{"Average price", strconv.FormatFloat(s.AvgPrice, 'f', 2, 64)})
	t.Append([]string{"Average bedrooms", strconv.FormatFloat(s.AvgBedrooms, 'f', 2, 64)})
	t.Append([]string{"Average bathrooms", strconv.FormatFloat(s.AvgBathrooms, 'f', 2, 64)})
	t.Append([]string{"Average floor area", strconv.FormatFloat(s.AvgFloorArea, 'f', 2, 64)})
	t.Append([]string{"Most common property type", s.MostCommonType})
	t.Append([]string{"Most listed county", s.MostCommonCounty})
	t.Render()
}
