// Package stats computes descriptive statistics and grouped means over record sets.
package stats

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/okian/minat/internal/domain/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NumericStats describes one numeric column. Undefined values are NaN.
type NumericStats struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// MarshalJSON writes NaN as null.
func (n NumericStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column string   `json:"column"`
		Count  int      `json:"count"`
		Mean   *float64 `json:"mean"`
		Std    *float64 `json:"std"`
		Min    *float64 `json:"min"`
		Q25    *float64 `json:"p25"`
		Q50    *float64 `json:"p50"`
		Q75    *float64 `json:"p75"`
		Max    *float64 `json:"max"`
	}{
		Column: n.Column,
		Count:  n.Count,
		Mean:   nullable(n.Mean),
		Std:    nullable(n.Std),
		Min:    nullable(n.Min),
		Q25:    nullable(n.Q25),
		Q50:    nullable(n.Q50),
		Q75:    nullable(n.Q75),
		Max:    nullable(n.Max),
	})
}

// CategoricalStats describes one text column.
type CategoricalStats struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

// ColumnType lists the kind of one column.
type ColumnType struct {
	Column string     `json:"column"`
	Kind   model.Kind `json:"kind"`
}

// Summary bundles the three descriptive tables.
type Summary struct {
	Numeric     []NumericStats     `json:"numeric"`
	Categorical []CategoricalStats `json:"categorical"`
	Types       []ColumnType       `json:"types"`
}

// Summarize describes every column of rs in layout order.
func Summarize(rs *model.RecordSet) Summary {
	s := Summary{
		Numeric:     make([]NumericStats, 0),
		Categorical: make([]CategoricalStats, 0),
		Types:       make([]ColumnType, 0),
	}
	for _, c := range rs.Columns() {
		s.Types = append(s.Types, ColumnType{Column: c.Name, Kind: c.Kind})
		switch {
		case c.Kind.Numeric():
			s.Numeric = append(s.Numeric, Describe(c.Name, rs.Floats(c)))
		case c.Kind == model.KindText:
			s.Categorical = append(s.Categorical, DescribeLabels(c.Name, rs.Texts(c)))
		}
	}
	return s
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max of the non-NaN values.
func Describe(column string, values []float64) NumericStats {
	xs := dropNaN(values)
	n := NumericStats{
		Column: column,
		Count:  len(xs),
		Mean:   math.NaN(),
		Std:    math.NaN(),
		Min:    math.NaN(),
		Q25:    math.NaN(),
		Q50:    math.NaN(),
		Q75:    math.NaN(),
		Max:    math.NaN(),
	}
	if len(xs) == 0 {
		return n
	}
	sort.Float64s(xs)
	n.Mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		n.Std = stat.StdDev(xs, nil)
	}
	n.Min = floats.Min(xs)
	n.Max = floats.Max(xs)
	n.Q25 = Quantile(xs, 0.25)
	n.Q50 = Quantile(xs, 0.50)
	n.Q75 = Quantile(xs, 0.75)
	return n
}

// DescribeLabels computes count, unique count, most frequent value and its
// frequency of the non-empty values. Ties go to the value seen first.
func DescribeLabels(column string, values []string) CategoricalStats {
	c := CategoricalStats{Column: column}
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, v := range values {
		if v == "" {
			continue
		}
		c.Count++
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	c.Unique = len(order)
	for _, v := range order {
		if counts[v] > c.Freq {
			c.Top = v
			c.Freq = counts[v]
		}
	}
	return c
}

// Quantile returns the p-quantile of sorted xs, interpolating linearly
// between the closest ranks at position (n-1)*p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 || p < 0 || p > 1 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
