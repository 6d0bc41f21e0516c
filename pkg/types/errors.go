package types

import "errors"

// Store lifecycle errors.
var (
	ErrStoreClosed = errors.New("store is closed")
	ErrAlreadyOpen = errors.New("store is already open")
)

// Operation errors.
var (
	ErrNotFound           = errors.New("todo not found")
	ErrParentNotFound     = errors.New("parent todo not found")
	ErrInvalidID          = errors.New("invalid todo ID")
	ErrHasChildren        = errors.New("todo has children")
	ErrIntegrity          = errors.New("tree integrity fault")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Validation errors. These are returned before any write takes effect;
// a failed validation never leaves a record or index entry behind.
var (
	ErrTitleEmpty         = errors.New("title must not be empty")
	ErrTitleTooLong       = errors.New("title exceeds 255 code points")
	ErrDescriptionTooLong = errors.New("description exceeds 1024 code points")
)

// IsValidation reports whether err belongs to the validation family.
func IsValidation(err error) bool {
	return errors.Is(err, ErrTitleEmpty) ||
		errors.Is(err, ErrTitleTooLong) ||
		errors.Is(err, ErrDescriptionTooLong)
}
