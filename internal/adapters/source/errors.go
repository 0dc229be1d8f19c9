package source

import "errors"

// Sentinel kinds for event source errors. Permission denial and feed
// unavailability are distinct causes but callers handle them the same way.
var (
	ErrUnavailable      = errors.New("event source unavailable")
	ErrPermissionDenied = errors.New("event source permission denied")
)

// IsUnavailable reports whether err is one of the fallback-triggering
// source conditions.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrPermissionDenied)
}
