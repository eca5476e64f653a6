package source

// Columns names the source columns that map onto record fields.
type Columns struct {
	Brand        string
	LocationType string
	AgeCategory  string
	LoginTime    string
	Interest     string
	Hour         string
	Day          string
}

// DefaultColumns returns the column names of the simulated data set.
func DefaultColumns() Columns {
	return Columns{
		Brand:        "Merk HP",
		LocationType: "Tipe Lokasi",
		AgeCategory:  "Kategori Usia",
		LoginTime:    "Jam Login",
		Interest:     "Minat Digital",
		Hour:         "Jam",
		Day:          "Hari",
	}
}

// Option configures a Loader.
type Option func(*Loader)

// WithColumns overrides the column names. Empty names keep their defaults.
func WithColumns(c Columns) Option {
	return func(l *Loader) {
		def := l.columns
		pick := func(v, fallback string) string {
			if v == "" {
				return fallback
			}
			return v
		}
		l.columns = Columns{
			Brand:        pick(c.Brand, def.Brand),
			LocationType: pick(c.LocationType, def.LocationType),
			AgeCategory:  pick(c.AgeCategory, def.AgeCategory),
			LoginTime:    pick(c.LoginTime, def.LoginTime),
			Interest:     pick(c.Interest, def.Interest),
			Hour:         pick(c.Hour, def.Hour),
			Day:          pick(c.Day, def.Day),
		}
	}
}

// WithEncoding sets the text encoding of CSV sources, e.g. "windows-1252".
func WithEncoding(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.encoding = name
		}
	}
}

// WithDelimiter sets the CSV field delimiter.
func WithDelimiter(r rune) Option {
	return func(l *Loader) {
		if r != 0 {
			l.delimiter = r
		}
	}
}

// WithSheet selects the worksheet of XLSX sources. Empty means the first sheet.
func WithSheet(name string) Option {
	return func(l *Loader) {
		l.sheet = name
	}
}
