// Package poller implements the submit-then-poll pattern shared by tasks
// wrapping long-running cloud operations (Athena queries, Glue job runs).
//
// The loop only retries waiting for a business-level state change; an error
// from the query function is a transport failure and propagates untouched.
// Retry-on-transient-error belongs to the surrounding workflow engine.
package poller

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultInterval is the delay between status queries when the task did not
// configure one.
const DefaultInterval = 500 * time.Millisecond

// Status classifies the lifecycle of a polled operation.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
	StatusCancelled
	StatusUnknown
)

// Terminal reports whether no further transition can occur.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled, StatusUnknown:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusRunning:
		return "RUNNING"
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusFailed:
		return "FAILED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// State is one observation of the operation: the classified status, the
// provider's raw state string, and the provider's state-change reason, kept
// verbatim for failure reporting.
type State struct {
	Status Status
	Raw    string
	Reason string
}

// QueryFunc fetches the current state of the operation from the provider.
type QueryFunc func(ctx context.Context) (State, error)

// Options bounds the wait loop. Both bounds are independent; whichever
// triggers first wins. Zero values mean unbounded (and DefaultInterval for
// Interval).
type Options struct {
	Interval      time.Duration
	MaxDuration   time.Duration
	MaxIterations int
}

// WaitTerminal polls query until the operation reaches a terminal state or
// a bound is exceeded. It blocks the calling goroutine; all state is local,
// so concurrent waits on different operations are independent.
//
// A FAILED, CANCELLED or UNKNOWN state returns an *OperationError carrying
// the provider's reason. Exceeding a bound returns a *TimeoutError; the
// remote operation is not cancelled, that is the caller's decision.
// Cancellation of ctx is observed at every query/sleep boundary.
func WaitTerminal(ctx context.Context, query QueryFunc, opts Options) (State, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := time.Now()
	iterations := 0

	for {
		if err := ctx.Err(); err != nil {
			return State{}, err
		}

		state, err := query(ctx)
		if err != nil {
			return State{}, err
		}
		iterations++

		switch state.Status {
		case StatusSucceeded:
			return state, nil
		case StatusFailed, StatusCancelled, StatusUnknown:
			return state, &OperationError{State: state}
		}

		logrus.WithFields(logrus.Fields{
			"state":     state.Raw,
			"iteration": iterations,
		}).Debug("Operation still in progress")

		if opts.MaxIterations > 0 && iterations >= opts.MaxIterations {
			return state, &TimeoutError{
				Iterations: iterations,
				Elapsed:    time.Since(start),
				LastState:  state,
			}
		}
		if opts.MaxDuration > 0 && time.Since(start) >= opts.MaxDuration {
			return state, &TimeoutError{
				Iterations: iterations,
				Elapsed:    time.Since(start),
				LastState:  state,
			}
		}

		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-time.After(interval):
		}
	}
}
