package stats

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrNotNumeric   = errors.New("field is not numeric")
	ErrNotGroupable = errors.New("field cannot be grouped")
)
