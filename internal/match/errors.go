package match

import "errors"

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrSearchUnavailable signals a backing-store connection or transient
// failure that survived the retry budget. Surfaced to the caller.
var ErrSearchUnavailable = errors.New("search backend unavailable")

// ErrSearchTimeout signals that the per-request deadline elapsed before the
// backing store answered. Never retried within the same request.
var ErrSearchTimeout = errors.New("search timed out")

// ValidationError wraps a user-facing validation message. Never retried.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
