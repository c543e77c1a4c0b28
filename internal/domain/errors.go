package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalid marks input that failed validation.
	ErrInvalid = errors.New("invalid input")

	ErrCartNotFound    = fmt.Errorf("shopping cart %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrEmptyCart       = fmt.Errorf("%w: cannot checkout an empty cart", ErrInvalid)
)

// Invalidf builds a validation error that matches ErrInvalid.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
