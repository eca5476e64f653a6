package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/okian/minat/internal/domain/model"
)

// Cells treated as missing when the frame is typed.
var nanValues = []string{"", "NA", "NaN", "N/A", "null"}

// Accepted login timestamp layouts, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
}

// parseTimestamp parses s with the first matching layout. Zone-less values are UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}

// buildRecordSet turns the raw grid into typed records. The frame is typed by
// gota: known numeric columns get forced types, extra columns are detected.
func (l *Loader) buildRecordSet(rows [][]string) (*model.RecordSet, error) {
	c := l.columns
	header := make([]string, len(rows[0]))
	index := make(map[string]int, len(header))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		if _, dup := index[header[i]]; !dup {
			index[header[i]] = i
		}
	}
	for _, name := range []string{c.Brand, c.LocationType, c.AgeCategory, c.LoginTime, c.Interest} {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	hourIdx, hasHour := index[c.Hour]
	dayIdx, hasDay := index[c.Day]

	body := normalizeRows(rows[1:], len(header))

	var colTypes []series.Type
	var df dataframe.DataFrame
	if len(body) > 0 {
		grid := make([][]string, 0, len(body)+1)
		grid = append(grid, header)
		grid = append(grid, body...)
		types := map[string]series.Type{
			c.Brand:        series.String,
			c.LocationType: series.String,
			c.AgeCategory:  series.String,
			c.LoginTime:    series.String,
			c.Day:          series.String,
			c.Interest:     series.Float,
			c.Hour:         series.Int,
		}
		df = dataframe.LoadRecords(grid,
			dataframe.HasHeader(true),
			dataframe.DetectTypes(true),
			dataframe.DefaultType(series.String),
			dataframe.NaNValues(nanValues),
			dataframe.WithTypes(types),
		)
		if df.Err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, df.Err)
		}
		colTypes = df.Types()
	}

	columns := make([]model.Column, 0, len(header)+2)
	extras := make([]int, 0)
	for i, name := range header {
		col := model.Column{Name: name, Field: model.FieldExtra, Kind: model.KindText}
		switch {
		case index[name] != i:
			// duplicate header; kept as an extra
		case name == c.Brand:
			col.Field = model.FieldBrand
		case name == c.LocationType:
			col.Field = model.FieldLocationType
		case name == c.AgeCategory:
			col.Field = model.FieldAgeCategory
		case name == c.LoginTime:
			col.Field, col.Kind = model.FieldLoginTime, model.KindTimestamp
		case name == c.Interest:
			col.Field, col.Kind = model.FieldInterest, model.KindFloat
		case name == c.Hour:
			col.Field, col.Kind = model.FieldHour, model.KindInteger
		case name == c.Day:
			col.Field = model.FieldDay
		}
		if col.Field == model.FieldExtra {
			col.Extra = len(extras)
			if i < len(colTypes) {
				col.Kind = kindOf(colTypes[i])
			}
			extras = append(extras, i)
		}
		columns = append(columns, col)
	}
	if !hasHour {
		columns = append(columns, model.Column{Name: c.Hour, Field: model.FieldHour, Kind: model.KindInteger})
	}
	if !hasDay {
		columns = append(columns, model.Column{Name: c.Day, Field: model.FieldDay, Kind: model.KindText})
	}

	records := make([]model.Record, len(body))
	interestIdx := index[c.Interest]
	for i, row := range body {
		ts, err := parseTimestamp(row[index[c.LoginTime]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		r := model.Record{
			Brand:        row[index[c.Brand]],
			LocationType: row[index[c.LocationType]],
			AgeCategory:  row[index[c.AgeCategory]],
			LoginTime:    ts,
			Hour:         ts.Hour(),
			Day:          ts.Weekday().String(),
			Interest:     df.Elem(i, interestIdx).Float(),
			Extras:       make([]string, len(extras)),
		}
		if hasHour {
			e := df.Elem(i, hourIdx)
			h, err := e.Int()
			if e.IsNA() || err != nil || h < 0 || h > 23 {
				return nil, fmt.Errorf("row %d: %w: %q", i+2, ErrBadHour, row[hourIdx])
			}
			r.Hour = h
		}
		if hasDay {
			r.Day = row[dayIdx]
		}
		for j, idx := range extras {
			r.Extras[j] = strings.TrimSpace(row[idx])
		}
		records[i] = r
	}
	return model.NewRecordSet(columns, records), nil
}

// normalizeRows pads or truncates rows to width and drops rows with no content.
func normalizeRows(rows [][]string, width int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		fixed := make([]string, width)
		copy(fixed, row)
		out = append(out, fixed)
	}
	return out
}

func kindOf(t series.Type) model.Kind {
	switch t {
	case series.Int:
		return model.KindInteger
	case series.Float:
		return model.KindFloat
	default:
		return model.KindText
	}
}
