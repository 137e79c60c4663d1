package shortener

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when the input is not an absolute URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrCodeGenerationExhausted signals that no free short code was found within the
	// attempt budget, or that the chosen code was taken by a concurrent insert.
	// Callers may retry the whole operation later.
	ErrCodeGenerationExhausted = errors.New("code generation exhausted")

	// ErrDuplicateCode is returned by a Repository when the short code already exists.
	// The Service never surfaces it on its own.
	ErrDuplicateCode = errors.New("duplicate short code")

	ErrNotFound        = errors.New("url not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("authentication required")

	// ErrSelfDeletion is returned when an administrator tries to delete their own account.
	ErrSelfDeletion = fmt.Errorf("%w: cannot delete own account", ErrForbidden)
)
