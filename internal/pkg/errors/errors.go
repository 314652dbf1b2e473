package errors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalid           = errors.New("invalid")
	ErrConflict          = errors.New("conflict")
	ErrTooMany           = errors.New("too many requests")
	ErrInternal          = errors.New("internal")
	ErrBotNotFound       = errors.New("bot not found")
	ErrBotLimitReached   = errors.New("bot limit reached")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyContent      = errors.New("no text content found")
	ErrSourceTooLarge    = errors.New("source file too large")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrBotNotFound)
}

// IsUserError reports whether the error should be returned to the caller
// as a correctable request problem rather than a server failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalid) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrSourceTooLarge)
}
