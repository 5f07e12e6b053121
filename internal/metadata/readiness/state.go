// Package readiness provides the one-shot handle that connects a metadata
// resolution to its consumers. A State is written once by its producer and
// may be read by any number of goroutines.
package readiness

import (
	"context"
	"sync"
	"sync/atomic"
)

// Status is the settlement status of a State
type Status int32

const (
	// Pending means the resolution has not settled
	Pending Status = iota
	// Fulfilled means the resolution succeeded
	Fulfilled
	// Rejected means the resolution failed
	Rejected
)

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// State is a one-shot result. It transitions from Pending to Fulfilled or
// Rejected exactly once and never changes afterwards.
type State struct {
	status   atomic.Int32
	observed atomic.Bool
	once     sync.Once
	done     chan struct{}
	err      error
}

// New returns a State that is already Pending
func New() *State {
	return &State{done: make(chan struct{})}
}

// Fulfill settles the state successfully. It reports whether this call
// settled the state.
func (s *State) Fulfill() bool {
	return s.settle(Fulfilled, nil)
}

// Reject settles the state with err. It reports whether this call settled
// the state. A nil err fulfils instead.
func (s *State) Reject(err error) bool {
	if err == nil {
		return s.Fulfill()
	}
	return s.settle(Rejected, err)
}

func (s *State) settle(status Status, err error) bool {
	settled := false
	s.once.Do(func() {
		s.err = err
		s.status.Store(int32(status))
		close(s.done)
		settled = true
	})
	return settled
}

// Status returns the current status without blocking
func (s *State) Status() Status {
	return Status(s.status.Load())
}

// Done is closed once the state settles
func (s *State) Done() <-chan struct{} {
	return s.done
}

// Err returns the rejection error, or nil while pending or when fulfilled
func (s *State) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Wait blocks until the state settles or ctx is done. It returns the
// rejection error, nil when fulfilled, or ctx.Err().
func (s *State) Wait(ctx context.Context) error {
	select {
	case <-s.done:
	default:
		select {
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.err != nil {
		s.observed.Store(true)
	}
	return s.err
}

// Observed reports whether a rejection was returned to at least one caller
// of Wait
func (s *State) Observed() bool {
	return s.observed.Load()
}
