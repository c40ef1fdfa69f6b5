package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/housing-cli/internal/dataset"
)

// Report is a markdown-friendly view of one analysis run.
type Report struct {
	Name          string
	Loaded        int
	Kept          int
	Columns       []string
	NullCounts    map[string]int
	Corr          *CorrMatrix
	Threshold     float64
	LowCorrelated []string
	Summary       Summary
	TopTypes      []CategoryCount
	TopCounties   []CategoryCount
	Samples       *dataset.Dataset
	Warnings      []string
}

// Markdown renders a compact report suitable for prompts or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d loaded, %d kept after cleaning (%d dropped)\n", r.Loaded, r.Kept, r.Loaded-r.Kept))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Columns)))

	if len(r.NullCounts) > 0 {
		b.WriteString("\n[MISSING VALUES AFTER CLEANING]\n")
		for _, c := range r.Columns {
			n := r.NullCounts[c]
			pct := 0.0
			if r.Loaded > 0 {
				pct = float64(n) * 100.0 / float64(r.Loaded)
			}
			b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)\n", safeName(c), n, pct))
		}
	}

	b.WriteString("\n[SUMMARY STATISTICS]\n")
	b.WriteString(fmt.Sprintf("- Average price: %.2f\n", r.Summary.AvgPrice))
	b.WriteString(fmt.Sprintf("- Average bedrooms: %.2f\n", r.Summary.AvgBedrooms))
	b.WriteString(fmt.Sprintf("- Average bathrooms: %.2f\n", r.Summary.AvgBathrooms))
	b.WriteString(fmt.Sprintf("- Average floor area: %.2f\n", r.Summary.AvgFloorArea))
	b.WriteString(fmt.Sprintf("- Most common property type: %s%s\n", safeVal(r.Summary.MostCommonType), topSuffix(r.TopTypes)))
	b.WriteString(fmt.Sprintf("- Most listed county: %s%s\n", safeVal(r.Summary.MostCommonCounty), topSuffix(r.TopCounties)))

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range r.Corr.TopPairs(10) {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
		var undefined []string
		for j, c := range r.Corr.Columns {
			if !r.Corr.Values[j][j].Valid {
				undefined = append(undefined, c)
			}
		}
		if len(undefined) > 0 {
			b.WriteString(fmt.Sprintf("- undefined (constant or empty): %s\n", strings.Join(undefined, ", ")))
		}
		b.WriteString(fmt.Sprintf("\n[LOW CORRELATION WITH %s (|r| < %.2f)]\n", strings.ToUpper(dataset.ColPrice), r.Threshold))
		if len(r.LowCorrelated) == 0 {
			b.WriteString("- none\n")
		}
		for _, c := range r.LowCorrelated {
			b.WriteString("- ")
			b.WriteString(c)
			b.WriteString("\n")
		}
	}

	if r.Samples != nil && r.Samples.Len() > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Samples.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c))
		}
		b.WriteString(" |\n| ")
		for i := range r.Samples.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples.Rows {
			b.WriteString("| ")
			for i, cell := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(safeVal(truncateCell(cell.String(), 80)))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func topSuffix(tops []CategoryCount) string {
	if len(tops) == 0 {
		return ""
	}
	lim := 3
	if len(tops) < lim {
		lim = len(tops)
	}
	parts := make([]string, lim)
	for i := 0; i < lim; i++ {
		parts[i] = fmt.Sprintf("%s(%d)", safeVal(tops[i].Value), tops[i].Count)
	}
	return "; top: " + strings.Join(parts, ", ")
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// truncateCell shortens val to at most max runes, ending in "...".
func truncateCell(val string, max int) string {
	r := []rune(val)
	if len(r) <= max {
		return val
	}
	return string(r[:max-3]) + "..."
}
