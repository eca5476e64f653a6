package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/okian/minat/internal/domain/model"
)

// GroupMean is the mean of a value field over the records sharing Key.
type GroupMean struct {
	Key string
	// Number is the numeric key for numeric group fields such as hour.
	Number float64
	Mean   float64
	// Count is the number of non-missing values averaged into Mean.
	Count int
}

// MarshalJSON writes a NaN mean as null.
func (g GroupMean) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key   string   `json:"key"`
		Mean  *float64 `json:"mean"`
		Count int      `json:"count"`
	}{Key: g.Key, Mean: nullable(g.Mean), Count: g.Count})
}

type accumulator struct {
	number float64
	sum    float64
	count  int
}

// MeanByGroup groups rs by the distinct observed values of group and averages
// value within each group. Keys come back sorted: ascending for numeric group
// fields, lexicographic otherwise. Keys with no records are never emitted.
func MeanByGroup(rs *model.RecordSet, group, value model.Field) ([]GroupMean, error) {
	if !group.Groupable() {
		return nil, fmt.Errorf("%w: %s", ErrNotGroupable, group)
	}
	if !value.Numeric() {
		return nil, fmt.Errorf("%w: %s", ErrNotNumeric, value)
	}

	groups := make(map[string]*accumulator)
	for i := 0; i < rs.Len(); i++ {
		r := rs.Record(i)
		key, ok := r.Label(group)
		if !ok {
			continue
		}
		acc, exists := groups[key]
		if !exists {
			acc = &accumulator{number: math.NaN()}
			if n, ok := r.Number(group); ok {
				acc.number = n
			}
			groups[key] = acc
		}
		if v, ok := r.Number(value); ok {
			acc.sum += v
			acc.count++
		}
	}

	out := make([]GroupMean, 0, len(groups))
	for key, acc := range groups {
		mean := math.NaN()
		if acc.count > 0 {
			mean = acc.sum / float64(acc.count)
		}
		out = append(out, GroupMean{Key: key, Number: acc.number, Mean: mean, Count: acc.count})
	}

	if group.Numeric() {
		sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	}
	return out, nil
}
