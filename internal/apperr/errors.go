// Package apperr holds the error taxonomy shared by stores, services and handlers.
// Errors are classified with errors.Is against the sentinels below.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrDuplicateConnection = errors.New("duplicate connection")
	ErrAggregation         = errors.New("aggregation error")
	ErrForbidden           = errors.New("forbidden")
)

// Validation reports a missing or empty required field.
func Validation(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}

func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func Duplicate(postID, acceptedByID string) error {
	return fmt.Errorf("%w: post %s already accepted by %s", ErrDuplicateConnection, postID, acceptedByID)
}

// Aggregation wraps a structural failure of the inbox computation.
func Aggregation(err error) error {
	return fmt.Errorf("%w: %w", ErrAggregation, err)
}
