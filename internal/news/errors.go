package news

import "errors"

// Precondition skips. No request was made and nothing was reported.
var (
	ErrBusy      = errors.New("a fetch is already in flight")
	ErrExhausted = errors.New("no more pages")
	ErrEmptyFeed = errors.New("feed is empty")
)

var (
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrStale is returned when a response arrived for a load that has
	// since been superseded.
	ErrStale = errors.New("stale response discarded")
)

// IsSkip reports whether err is a precondition skip rather than a failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrBusy) || errors.Is(err, ErrExhausted) || errors.Is(err, ErrEmptyFeed)
}
