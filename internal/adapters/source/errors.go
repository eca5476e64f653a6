package source

import "errors"

// Sentinel kinds for loader errors. ErrMissingSource is the only kind the
// dashboard recovers from; the rest fail the load.
var (
	ErrMissingSource     = errors.New("data source missing")
	ErrMissingColumn     = errors.New("required column missing")
	ErrBadTimestamp      = errors.New("unparsable login timestamp")
	ErrBadHour           = errors.New("hour outside 0..23")
	ErrDecode            = errors.New("decode data source failed")
	ErrUnsupportedFormat = errors.New("unsupported data source format")
)
