package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when a lookup matches no row
	ErrNotFound = errors.New("not found")

	// ErrFeedUnavailable marks a failed snapshot fetch; the whole run aborts
	ErrFeedUnavailable = errors.New("nav feed unavailable")

	// ErrMalformedRecord marks a feed record with missing or unparseable fields
	ErrMalformedRecord = errors.New("malformed feed record")

	// ErrUnknownScheme marks a feed record whose scheme code is not in the catalog
	ErrUnknownScheme = errors.New("unknown scheme")

	// ErrCatalogNotReady is returned when the store has not been migrated yet
	ErrCatalogNotReady = errors.New("catalog not ready")
)

// FeedUnavailableError carries the raw transport outcome of a failed fetch
type FeedUnavailableError struct {
	StatusCode int    // 0 when no response was received
	Body       string // Raw response body, if any
	Err        error  // Transport or decode error, if any
}

func (e *FeedUnavailableError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %v", ErrFeedUnavailable, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrFeedUnavailable, e.Err)
	default:
		return fmt.Sprintf("%s: status %d: %s", ErrFeedUnavailable, e.StatusCode, e.Body)
	}
}

func (e *FeedUnavailableError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrFeedUnavailable) match any FeedUnavailableError
func (e *FeedUnavailableError) Is(target error) bool {
	return target == ErrFeedUnavailable
}
