// Package lock provides named, time-boxed mutual exclusion shared between
// callers that talk to the same external service.
//
// A Provider hands out Handles for a lock name. Memory keeps the locks inside
// the process; Redis shares them between every process pointed at the same
// Redis instance.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrConflict is returned when a lock could not be acquired before
// Options.Wait elapsed.
var ErrConflict = errors.New("lock: conflict")

const (
	DefaultWait         = 5 * time.Second
	DefaultLease        = 10 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Options controls a single acquisition.
type Options struct {
	// MaxHolders is how many handles may hold the name at once.
	MaxHolders int
	// Wait bounds how long Acquire blocks before returning ErrConflict.
	Wait time.Duration
	// Lease is how long a handle keeps the lock if it is never released.
	Lease time.Duration
	// PollInterval is how often providers that cannot block natively retry.
	PollInterval time.Duration
}

// WithDefaults fills zero fields with the package defaults.
func (o Options) WithDefaults() Options {
	if o.MaxHolders <= 0 {
		o.MaxHolders = 1
	}
	if o.Wait <= 0 {
		o.Wait = DefaultWait
	}
	if o.Lease <= 0 {
		o.Lease = DefaultLease
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// Handle is an acquired lock. Release must be safe to call more than once.
type Handle interface {
	Release(ctx context.Context) error
}

// Provider acquires named locks.
//
// Acquire blocks until the lock is held, Options.Wait elapses (ErrConflict)
// or ctx is done (ctx.Err()).
type Provider interface {
	Acquire(ctx context.Context, name string, opts Options) (Handle, error)
}
