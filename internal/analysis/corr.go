// Package analysis computes correlations and summary statistics over a cleaned listings dataset.
package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/housing-cli/internal/dataset"
	"github.com/KaramelBytes/housing-cli/internal/normalize"
)

// CorrelationColumns is the fixed numeric set fed to the correlation matrix.
var CorrelationColumns = []string{
	dataset.ColPrice,
	dataset.ColBathrooms,
	dataset.ColFloorArea,
	dataset.ColLatitude,
	dataset.ColLongitude,
	dataset.ColViews,
	dataset.ColConstruction,
}

// CorrMatrix holds a symmetric Pearson correlation matrix. Undefined entries
// (zero variance, fewer than two paired observations) are Missing.
type CorrMatrix struct {
	Columns []string
	Values  [][]normalize.Number // row-major, Values[i][j]
}

// At returns the coefficient for the named pair.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j].Float64()
}

func (m *CorrMatrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// pairAcc accumulates co-moments for one column pair over rows where both
// values are present (Welford update).
type pairAcc struct {
	n     float64
	meanX float64
	meanY float64
	cxx   float64
	cyy   float64
	cxy   float64
}

func (p *pairAcc) add(x, y float64) {
	p.n++
	dx := x - p.meanX
	p.meanX += dx / p.n
	dy := y - p.meanY
	p.meanY += dy / p.n
	p.cxx += dx * (x - p.meanX)
	p.cyy += dy * (y - p.meanY)
	p.cxy += dx * (y - p.meanY)
}

func (p *pairAcc) r() normalize.Number {
	if p.n < 2 || p.cxx <= 0 || p.cyy <= 0 {
		return normalize.Missing
	}
	r := p.cxy / math.Sqrt(p.cxx*p.cyy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return normalize.Missing
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return normalize.Some(r)
}

// Correlate computes pairwise-complete Pearson coefficients among columns.
// A nil columns slice selects CorrelationColumns.
func Correlate(d *dataset.Dataset, columns []string) (*CorrMatrix, error) {
	if columns == nil {
		columns = CorrelationColumns
	}
	if err := d.RequireColumns(columns...); err != nil {
		return nil, err
	}
	n := len(columns)
	vals := make([][]normalize.Number, n)
	for i, c := range columns {
		v, err := d.Numbers(c)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	mat := make([][]normalize.Number, n)
	for i := range mat {
		mat[i] = make([]normalize.Number, n)
	}
	for a := 0; a < n; a++ {
		self := &pairAcc{}
		for _, x := range vals[a] {
			if x.Valid {
				self.add(x.Value, x.Value)
			}
		}
		if self.r().Valid {
			mat[a][a] = normalize.Some(1)
		}
		for b := a + 1; b < n; b++ {
			pa := &pairAcc{}
			for row := range vals[a] {
				x, y := vals[a][row], vals[b][row]
				if x.Valid && y.Valid {
					pa.add(x.Value, y.Value)
				}
			}
			r := pa.r()
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), columns...), Values: mat}, nil
}

// LowCorrelated lists the columns whose |r| with target is below threshold,
// in matrix order. The target itself and undefined coefficients are never listed.
func LowCorrelated(m *CorrMatrix, target string, threshold float64) []string {
	t := m.index(target)
	if t < 0 {
		return nil
	}
	var out []string
	for j, c := range m.Columns {
		if j == t {
			continue
		}
		if r, ok := m.Values[t][j].Float64(); ok && math.Abs(r) < threshold {
			out = append(out, c)
		}
	}
	return out
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// TopPairs returns the defined off-diagonal pairs sorted by |r| descending.
func (m *CorrMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r, ok := m.Values[i][j].Float64(); ok {
				pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}
