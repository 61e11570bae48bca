// internal/errors/errors.go
package errors

import "errors"

// Sentinel error kinds produced by the core. The HTTP boundary maps each
// kind to a status code via Status; the kinds themselves carry no
// transport meaning.
var (
	ErrMissingField      = errors.New("bad request - missing field(s)")
	ErrInvalidQuery      = errors.New("bad request - invalid query")
	ErrUsernameTaken     = errors.New("username is taken")
	ErrUsernameNotFound  = errors.New("username not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrAlreadyFollowing  = errors.New("user already followed")
	ErrNotFollowing      = errors.New("user not followed")
	ErrAlreadyLiked      = errors.New("already liked")
	ErrNotLiked          = errors.New("not liked")
	ErrNotFound          = errors.New("resource not found")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// Is reports whether err matches the given kind. Thin wrapper so callers
// don't need to import both this package and the stdlib errors package.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}
