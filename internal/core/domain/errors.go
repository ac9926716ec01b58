package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPageSize      = errors.New("page size must be positive")
	ErrInvalidPage          = errors.New("page must be 1 or greater")
	ErrInvalidPriceRange    = errors.New("price min must not exceed price max")
	ErrInvalidHotelType     = errors.New("unknown hotel type")
	ErrInvalidAmenityFilter = errors.New("unknown amenity filter")
	ErrInvalidSort          = errors.New("unknown sort order")

	ErrMalformedRecord = errors.New("malformed hotel record")

	ErrHotelNotFound       = errors.New("hotel not found")
	ErrListingsUnavailable = errors.New("unable to load listings")
)

// ValidationError - ошибка входных параметров с указанием поля.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError - true для любой ошибки входных параметров.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
