// Package model contains domain models passed between layers.
package model

import (
	"math"
	"strconv"
	"time"
)

// TimestampLayout is the display layout for login timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Kind classifies a column for statistics and display.
type Kind string

// Column kinds.
const (
	KindText      Kind = "text"
	KindInteger   Kind = "integer"
	KindFloat     Kind = "float"
	KindTimestamp Kind = "timestamp"
)

// Numeric reports whether the kind takes part in numeric statistics.
func (k Kind) Numeric() bool {
	return k == KindInteger || k == KindFloat
}

// Field names a record attribute.
type Field string

// Known record fields. FieldExtra marks source columns kept verbatim.
const (
	FieldBrand        Field = "brand"
	FieldLocationType Field = "location_type"
	FieldAgeCategory  Field = "age_category"
	FieldLoginTime    Field = "login_time"
	FieldHour         Field = "hour"
	FieldDay          Field = "day"
	FieldInterest     Field = "interest"
	FieldExtra        Field = "extra"
)

// Numeric reports whether the field carries a number.
func (f Field) Numeric() bool {
	return f == FieldHour || f == FieldInterest
}

// Groupable reports whether the field can partition records.
func (f Field) Groupable() bool {
	switch f {
	case FieldBrand, FieldLocationType, FieldAgeCategory, FieldDay, FieldHour:
		return true
	default:
		return false
	}
}

// Record is one user login row.
type Record struct {
	Brand        string    // phone brand, e.g. "Samsung"
	LocationType string    // location type label
	AgeCategory  string    // age category label
	LoginTime    time.Time // parsed login timestamp
	Hour         int       // 0..23
	Day          string    // English weekday name
	Interest     float64   // digital interest score; NaN when missing
	Extras       []string  // raw cells of extra source columns
}

// Text returns the raw text of a field. Extra columns are not addressed here.
func (r Record) Text(f Field) string {
	switch f {
	case FieldBrand:
		return r.Brand
	case FieldLocationType:
		return r.LocationType
	case FieldAgeCategory:
		return r.AgeCategory
	case FieldDay:
		return r.Day
	case FieldHour:
		return strconv.Itoa(r.Hour)
	case FieldLoginTime:
		return r.LoginTime.Format(TimestampLayout)
	case FieldInterest:
		return formatFloat(r.Interest)
	default:
		return ""
	}
}

// Label returns a grouping label. Empty labels count as missing.
func (r Record) Label(f Field) (string, bool) {
	if !f.Groupable() {
		return "", false
	}
	v := r.Text(f)
	return v, v != ""
}

// Number returns the numeric value of a field; false when missing or not numeric.
func (r Record) Number(f Field) (float64, bool) {
	switch f {
	case FieldHour:
		return float64(r.Hour), true
	case FieldInterest:
		if math.IsNaN(r.Interest) {
			return math.NaN(), false
		}
		return r.Interest, true
	default:
		return math.NaN(), false
	}
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
