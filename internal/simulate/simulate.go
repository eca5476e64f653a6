// Package simulate generates the simulated user login data set the dashboard
// reads, as CSV or XLSX.
package simulate

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/minat/internal/domain/model"
)

// Error constants.
var (
	ErrInvalidConfig = errors.New("invalid simulation config")
	ErrWrite         = errors.New("write simulated data failed")
)

// Column names of the generated file.
const (
	ColumnUserID       = "ID Pengguna"
	ColumnBrand        = "Merk HP"
	ColumnLocationType = "Tipe Lokasi"
	ColumnAgeCategory  = "Kategori Usia"
	ColumnLoginTime    = "Jam Login"
	ColumnInterest     = "Minat Digital"
	ColumnHour         = "Jam"
	ColumnDay          = "Hari"
)

type weighted struct {
	value  string
	weight float64
	effect float64
}

var (
	brands = []weighted{
		{"Samsung", 0.28, 3},
		{"Xiaomi", 0.22, 1},
		{"Oppo", 0.18, 0},
		{"Vivo", 0.14, -1},
		{"Apple", 0.10, 8},
		{"Realme", 0.08, -2},
	}
	locations = []weighted{
		{"Perkotaan", 0.6, 6},
		{"Pedesaan", 0.4, -6},
	}
	ages = []weighted{
		{"Remaja", 0.25, 10},
		{"Dewasa Muda", 0.35, 6},
		{"Dewasa", 0.28, -2},
		{"Lansia", 0.12, -14},
	}
)

// Login activity per hour of day, peaking in the evening.
var hourWeights = [24]float64{
	1, 0.6, 0.4, 0.3, 0.3, 0.6, 1.5, 3, 4, 4, 3.5, 3.5,
	4.5, 4, 3.5, 3.5, 4, 5, 6.5, 8, 8.5, 7.5, 5, 2.5,
}

// Config controls a simulation run.
type Config struct {
	// Rows is the number of records to generate.
	Rows int
	// Seed makes runs reproducible.
	Seed uint64
	// Start is the earliest login time; logins spread over Days days.
	Start time.Time
	Days  int
	// WithDerived also writes the Jam and Hari columns.
	WithDerived bool
	// MissingRate is the share of interest cells left blank.
	MissingRate float64
}

// DefaultConfig returns the settings used by gen-data.
func DefaultConfig() Config {
	return Config{
		Rows:  1000,
		Seed:  42,
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:  30,
	}
}

// Validate checks c.
func (c Config) Validate() error {
	switch {
	case c.Rows < 0:
		return fmt.Errorf("%w: rows must be >= 0", ErrInvalidConfig)
	case c.Days <= 0:
		return fmt.Errorf("%w: days must be > 0", ErrInvalidConfig)
	case c.MissingRate < 0 || c.MissingRate > 1:
		return fmt.Errorf("%w: missing rate must be within [0,1]", ErrInvalidConfig)
	}
	return nil
}

// Row is one generated record. A NaN Interest is written as an empty cell.
type Row struct {
	UserID       uuid.UUID
	Brand        string
	LocationType string
	AgeCategory  string
	LoginTime    time.Time
	Interest     float64
}

// Generate produces c.Rows records. Equal configs give equal rows.
func Generate(c Config) ([]Row, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], c.Seed)
	src := rand.NewChaCha8(seed)
	rng := rand.New(src)

	rows := make([]Row, c.Rows)
	for i := range rows {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return nil, fmt.Errorf("user id: %w", err)
		}
		brand := pick(rng, brands)
		loc := pick(rng, locations)
		age := pick(rng, ages)
		hour := pickHour(rng)
		ts := c.Start.
			AddDate(0, 0, rng.IntN(c.Days)).
			Add(time.Duration(hour)*time.Hour +
				time.Duration(rng.IntN(60))*time.Minute +
				time.Duration(rng.IntN(60))*time.Second)

		interest := math.NaN()
		if c.MissingRate == 0 || rng.Float64() >= c.MissingRate {
			interest = score(rng, hour, brand.effect+loc.effect+age.effect)
		}
		rows[i] = Row{
			UserID:       id,
			Brand:        brand.value,
			LocationType: loc.value,
			AgeCategory:  age.value,
			LoginTime:    ts,
			Interest:     interest,
		}
	}
	return rows, nil
}

// score is a 0..100 interest with one decimal. Evening logins score higher.
func score(rng *rand.Rand, hour int, effect float64) float64 {
	evening := 4 * math.Sin(math.Pi*float64(hour-6)/18)
	v := 55 + effect + evening + rng.NormFloat64()*10
	v = math.Max(0, math.Min(100, v))
	return math.Round(v*10) / 10
}

func pick(rng *rand.Rand, options []weighted) weighted {
	total := 0.0
	for _, o := range options {
		total += o.weight
	}
	x := rng.Float64() * total
	for _, o := range options {
		if x < o.weight {
			return o
		}
		x -= o.weight
	}
	return options[len(options)-1]
}

func pickHour(rng *rand.Rand) int {
	total := 0.0
	for _, w := range hourWeights {
		total += w
	}
	x := rng.Float64() * total
	for h, w := range hourWeights {
		if x < w {
			return h
		}
		x -= w
	}
	return 23
}

// Header returns the column names written for c.
func Header(withDerived bool) []string {
	h := []string{ColumnUserID, ColumnBrand, ColumnLocationType, ColumnAgeCategory, ColumnLoginTime, ColumnInterest}
	if withDerived {
		h = append(h, ColumnHour, ColumnDay)
	}
	return h
}

// Cells renders r in Header order.
func (r Row) Cells(withDerived bool) []string {
	interest := ""
	if !math.IsNaN(r.Interest) {
		interest = strconv.FormatFloat(r.Interest, 'f', -1, 64)
	}
	cells := []string{
		r.UserID.String(),
		r.Brand,
		r.LocationType,
		r.AgeCategory,
		r.LoginTime.Format(model.TimestampLayout),
		interest,
	}
	if withDerived {
		cells = append(cells, strconv.Itoa(r.LoginTime.Hour()), r.LoginTime.Weekday().String())
	}
	return cells
}
