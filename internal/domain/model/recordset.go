package model

import (
	"math"
	"strconv"
	"strings"
)

// Column describes one column of the source layout.
type Column struct {
	Name  string
	Field Field
	Kind  Kind
	// Extra is the index into Record.Extras when Field is FieldExtra.
	Extra int
}

// RecordSet is an ordered, read-only collection of records sharing a column layout.
type RecordSet struct {
	columns []Column
	records []Record
}

// NewRecordSet copies columns and records into a new set.
func NewRecordSet(columns []Column, records []Record) *RecordSet {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	recs := make([]Record, len(records))
	copy(recs, records)
	return &RecordSet{columns: cols, records: recs}
}

// Empty returns a set with no columns and no records.
func Empty() *RecordSet {
	return &RecordSet{}
}

// Len returns the number of records. A nil set is empty.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.records)
}

// Columns returns a copy of the column layout.
func (rs *RecordSet) Columns() []Column {
	if rs == nil {
		return nil
	}
	cols := make([]Column, len(rs.columns))
	copy(cols, rs.columns)
	return cols
}

// Column finds a column by name.
func (rs *RecordSet) Column(name string) (Column, bool) {
	if rs == nil {
		return Column{}, false
	}
	for _, c := range rs.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Record returns the i-th record.
func (rs *RecordSet) Record(i int) Record {
	return rs.records[i]
}

// Subset returns a new set with the records at idx, in idx order.
func (rs *RecordSet) Subset(idx []int) *RecordSet {
	if rs == nil {
		return Empty()
	}
	out := &RecordSet{columns: rs.columns, records: make([]Record, 0, len(idx))}
	for _, i := range idx {
		out.records = append(out.records, rs.records[i])
	}
	return out
}

// Head returns the first n records.
func (rs *RecordSet) Head(n int) *RecordSet {
	if n > rs.Len() {
		n = rs.Len()
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return rs.Subset(idx)
}

// Cell renders the value of column c for record i.
func (rs *RecordSet) Cell(i int, c Column) string {
	r := rs.records[i]
	if c.Field == FieldExtra {
		if c.Extra < 0 || c.Extra >= len(r.Extras) {
			return ""
		}
		return r.Extras[c.Extra]
	}
	return r.Text(c.Field)
}

// Floats returns the numeric values of column c, NaN for missing cells.
func (rs *RecordSet) Floats(c Column) []float64 {
	out := make([]float64, rs.Len())
	for i, r := range rs.records {
		switch {
		case c.Field == FieldExtra:
			out[i] = parseFloat(rs.Cell(i, c))
		default:
			v, ok := r.Number(c.Field)
			if !ok {
				v = math.NaN()
			}
			out[i] = v
		}
	}
	return out
}

// Texts returns the text values of column c; empty strings mark missing cells.
func (rs *RecordSet) Texts(c Column) []string {
	out := make([]string, rs.Len())
	for i := range rs.records {
		out[i] = rs.Cell(i, c)
	}
	return out
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
