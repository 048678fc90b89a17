package calc

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDataset      = errors.New("empty dataset")
	ErrNoPositionColumns = errors.New("no position columns")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmptyInput        = errors.New("empty input")
)

var kinds = []error{
	ErrEmptyDataset,
	ErrNoPositionColumns,
	ErrInvalidParameter,
	ErrInvalidInput,
	ErrEmptyInput,
}

// Kind returns the short name of the error kind wrapped by err, or "" when
// err does not carry one of the analysis kinds.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return ""
}

// Errorf wraps kind with a formatted detail, e.g.
// Errorf(ErrInvalidParameter, "eps=%g must be > 0", eps).
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
