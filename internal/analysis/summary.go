package analysis

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/housing-cli/internal/dataset"
)

// Summary is the fixed set of aggregates rendered into the prompt.
type Summary struct {
	Rows             int
	AvgPrice         float64
	AvgBedrooms      float64
	AvgBathrooms     float64
	AvgFloorArea     float64
	MostCommonType   string
	MostCommonCounty string
}

// CategoryCount is one entry of a frequency ranking.
type CategoryCount struct {
	Value string
	Count int
}

// Summarize computes means of the cleaned numeric columns and modes of the
// property type and county columns.
func Summarize(d *dataset.Dataset) (Summary, error) {
	var s Summary
	if d.Len() == 0 {
		return s, ErrEmptyDataset
	}
	s.Rows = d.Len()
	means := []struct {
		col string
		dst *float64
	}{
		{dataset.ColPrice, &s.AvgPrice},
		{dataset.ColBedrooms, &s.AvgBedrooms},
		{dataset.ColBathrooms, &s.AvgBathrooms},
		{dataset.ColFloorArea, &s.AvgFloorArea},
	}
	for _, m := range means {
		v, err := Mean(d, m.col)
		if err != nil {
			return Summary{}, err
		}
		*m.dst = v
	}
	var err error
	if s.MostCommonType, err = Mode(d, dataset.ColPropertyType); err != nil {
		return Summary{}, err
	}
	if s.MostCommonCounty, err = Mode(d, dataset.ColCounty); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// Mean is the arithmetic mean of the present values of a column.
func Mean(d *dataset.Dataset, col string) (float64, error) {
	vals, err := d.Numbers(col)
	if err != nil {
		return 0, err
	}
	var sum float64
	var n int
	for _, v := range vals {
		if v.Valid {
			sum += v.Value
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: no values in %q", ErrEmptyDataset, col)
	}
	return sum / float64(n), nil
}

// Mode returns the most frequent present value of a column. Ties go to the
// lexicographically smallest value.
func Mode(d *dataset.Dataset, col string) (string, error) {
	ranked, err := Frequencies(d, col)
	if err != nil {
		return "", err
	}
	if len(ranked) == 0 {
		return "", fmt.Errorf("%w: no values in %q", ErrEmptyDataset, col)
	}
	return ranked[0].Value, nil
}

// Frequencies ranks the present values of a column by count, then by value.
func Frequencies(d *dataset.Dataset, col string) ([]CategoryCount, error) {
	vals, present, err := d.Texts(col)
	if err != nil {
		return nil, err
	}
	cats := make(map[string]int)
	for i, v := range vals {
		if present[i] {
			cats[v]++
		}
	}
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	return tops, nil
}
