package poller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubQuery returns the given states in order, then keeps returning the
// last one. It records how many times it was called.
func stubQuery(states ...State) (QueryFunc, *int) {
	calls := 0
	return func(ctx context.Context) (State, error) {
		state := states[len(states)-1]
		if calls < len(states) {
			state = states[calls]
		}
		calls++
		return state, nil
	}, &calls
}

func running() State {
	return State{Status: StatusRunning, Raw: "RUNNING"}
}

func TestWaitTerminalSucceedsAfterRunning(t *testing.T) {
	const n = 3
	states := make([]State, 0, n+1)
	for range n {
		states = append(states, running())
	}
	states = append(states, State{Status: StatusSucceeded, Raw: "SUCCEEDED"})

	query, calls := stubQuery(states...)

	start := time.Now()
	state, err := WaitTerminal(context.Background(), query, Options{Interval: 10 * time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, state.Status)
	assert.Equal(t, n+1, *calls, "query should be called exactly N+1 times")
	assert.GreaterOrEqual(t, time.Since(start), time.Duration(n)*10*time.Millisecond,
		"should wait the interval between each call")
}

func TestWaitTerminalImmediateSuccess(t *testing.T) {
	query, calls := stubQuery(State{Status: StatusSucceeded, Raw: "SUCCEEDED"})

	state, err := WaitTerminal(context.Background(), query, Options{Interval: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, state.Status)
	assert.Equal(t, 1, *calls)
}

func TestWaitTerminalFailedReturnsReasonVerbatim(t *testing.T) {
	query, calls := stubQuery(State{Status: StatusFailed, Raw: "FAILED", Reason: "boom"})

	state, err := WaitTerminal(context.Background(), query, Options{Interval: time.Millisecond})
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "boom", opErr.State.Reason)
	assert.Equal(t, StatusFailed, state.Status)
	assert.Equal(t, 1, *calls, "no further queries after a terminal failure")
}

func TestWaitTerminalCancelledState(t *testing.T) {
	query, calls := stubQuery(State{Status: StatusCancelled, Raw: "CANCELLED"})

	_, err := WaitTerminal(context.Background(), query, Options{Interval: time.Millisecond})
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, StatusCancelled, opErr.State.Status)
	assert.Equal(t, 1, *calls)
}

func TestWaitTerminalMaxIterations(t *testing.T) {
	query, calls := stubQuery(running())

	_, err := WaitTerminal(context.Background(), query, Options{
		Interval:      time.Millisecond,
		MaxIterations: 3,
	})
	require.Error(t, err)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 3, *calls, "exactly 3 queries, never a 4th")
	assert.Equal(t, 3, timeoutErr.Iterations)
}

func TestWaitTerminalMaxDuration(t *testing.T) {
	query, _ := stubQuery(running())

	start := time.Now()
	_, err := WaitTerminal(context.Background(), query, Options{
		Interval:    200 * time.Millisecond,
		MaxDuration: 500 * time.Millisecond,
	})
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.GreaterOrEqual(t, elapsed, 500*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestWaitTerminalUnknownStateIsTerminalFailure(t *testing.T) {
	classifier := NewClassifier(map[string]Status{
		"RUNNING":   StatusRunning,
		"SUCCEEDED": StatusSucceeded,
	})

	query, calls := stubQuery(classifier.Classify("WEIRD_STATE", ""))

	_, err := WaitTerminal(context.Background(), query, Options{Interval: time.Millisecond})
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, StatusUnknown, opErr.State.Status)
	assert.Equal(t, "WEIRD_STATE", opErr.State.Raw)
	assert.Equal(t, 1, *calls, "no further polling after an unrecognized state")
}

func TestWaitTerminalTransportErrorPropagates(t *testing.T) {
	calls := 0
	transportErr := fmt.Errorf("connection reset")
	query := func(ctx context.Context) (State, error) {
		calls++
		return State{}, transportErr
	}

	_, err := WaitTerminal(context.Background(), query, Options{Interval: time.Millisecond})
	require.ErrorIs(t, err, transportErr, "transport errors are not retried or wrapped")
	assert.Equal(t, 1, calls)
}

func TestWaitTerminalContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	query := func(ctx context.Context) (State, error) {
		cancel()
		return running(), nil
	}

	_, err := WaitTerminal(ctx, query, Options{Interval: time.Hour})
	require.ErrorIs(t, err, context.Canceled, "cancellation observed at the sleep boundary")
}

func TestClassifier(t *testing.T) {
	classifier := NewClassifier(map[string]Status{
		"QUEUED":    StatusPending,
		"RUNNING":   StatusRunning,
		"SUCCEEDED": StatusSucceeded,
		"FAILED":    StatusFailed,
		"CANCELLED": StatusCancelled,
	})

	tests := []struct {
		raw      string
		expected Status
		terminal bool
	}{
		{"QUEUED", StatusPending, false},
		{"RUNNING", StatusRunning, false},
		{"SUCCEEDED", StatusSucceeded, true},
		{"FAILED", StatusFailed, true},
		{"CANCELLED", StatusCancelled, true},
		{"SOMETHING_ELSE", StatusUnknown, true},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			state := classifier.Classify(tc.raw, "reason")
			assert.Equal(t, tc.expected, state.Status)
			assert.Equal(t, tc.terminal, state.Status.Terminal())
			assert.Equal(t, "reason", state.Reason)
		})
	}
}

func TestOperationErrorMessage(t *testing.T) {
	err := &OperationError{State: State{Status: StatusFailed, Raw: "FAILED", Reason: "boom"}}
	assert.Contains(t, err.Error(), "boom")

	unknown := &OperationError{State: State{Status: StatusUnknown, Raw: "WEIRD"}}
	assert.Contains(t, unknown.Error(), "WEIRD")

	var generic error = &OperationError{State: State{Status: StatusCancelled}}
	assert.Contains(t, generic.Error(), "CANCELLED")
	assert.False(t, errors.Is(generic, context.Canceled))
}
