// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Map converts repo/infra errors into core error kinds.
// Keeps service layer clean by centralizing error mapping.
//
// Errors that are already core kinds pass through unchanged, as do
// unrecognized store faults (the boundary treats those as internal).
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound

	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)

	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)

	default:
		return err
	}
}

// Duplicate converts a storage-level uniqueness violation into the given
// core kind. A lost check-then-act race surfaces here: the pre-check
// passed but the unique index rejected the write, so the caller gets the
// same error it would have gotten from the pre-check.
func Duplicate(err, kind error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: constraint violation", kind)
	}
	return err
}

// Status maps a core error kind to the HTTP status the boundary layer
// should answer with. Unrecognized errors are server faults.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrIncorrectPassword):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingField),
		errors.Is(err, ErrInvalidQuery),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrUsernameNotFound),
		errors.Is(err, ErrAlreadyFollowing),
		errors.Is(err, ErrNotFollowing),
		errors.Is(err, ErrAlreadyLiked),
		errors.Is(err, ErrNotLiked):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
