// Package lock guards the scheduled sync against overlapping runs.
package lock

import (
	"context"
	"errors"
)

// ErrHeld is returned by Acquire when another holder owns the lease
var ErrHeld = errors.New("lease held by another run")

// Locker hands out a single lease at a time
type Locker interface {
	// Acquire takes the lease or returns ErrHeld. The returned release
	// function gives the lease back and is safe to call once.
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}
