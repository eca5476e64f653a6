package service

import "errors"

// ErrLoad wraps loader failures other than a missing source.
var ErrLoad = errors.New("load data set failed")
