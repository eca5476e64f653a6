// Package source loads the simulated data set from a CSV or XLSX file and
// derives the hour and day fields from the login timestamp.
package source

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/minat/internal/domain/model"
)

// Loader reads a data file into a record set. Load is memoized: the file is
// read at most once per Loader and every later call returns the same result.
type Loader struct {
	path      string
	columns   Columns
	encoding  string
	delimiter rune
	sheet     string

	once sync.Once
	rs   *model.RecordSet
	err  error
}

// NewLoader constructs a Loader for path.
func NewLoader(path string, opts ...Option) *Loader {
	l := &Loader{
		path:      path,
		columns:   DefaultColumns(),
		encoding:  "utf-8",
		delimiter: ',',
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.path }

// Columns returns the column names the loader maps.
func (l *Loader) Columns() Columns { return l.columns }

// Load returns the memoized record set. When the source is missing it returns
// an empty set together with an error wrapping ErrMissingSource.
func (l *Loader) Load(ctx context.Context) (*model.RecordSet, error) {
	l.once.Do(func() {
		l.rs, l.err = l.Read(ctx)
	})
	return l.rs, l.err
}

// Read loads the file without consulting or filling the memo.
func (l *Loader) Read(ctx context.Context) (*model.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := l.readRows()
	if err != nil {
		if errors.Is(err, ErrMissingSource) {
			return model.Empty(), err
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.buildRecordSet(rows)
}
