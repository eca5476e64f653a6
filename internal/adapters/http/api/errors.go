package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrUnknownChart = errors.New("unknown chart")
	ErrRender       = errors.New("render failed")
	ErrRecompute    = errors.New("recompute failed")
	ErrNoData       = errors.New("no data loaded")
)

// KindError tags an error with the operation that failed and its sentinel kind.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of kind for op.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind wraps err as kind for op.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}
