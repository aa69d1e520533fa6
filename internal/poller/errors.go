package poller

import (
	"fmt"
	"time"
)

// OperationError reports that the polled operation reached a failure
// terminal state. The provider's reason string is preserved verbatim.
type OperationError struct {
	State State
}

func (e *OperationError) Error() string {
	if e.State.Reason != "" {
		return fmt.Sprintf("operation reached state %s: %s", e.State.Status, e.State.Reason)
	}
	if e.State.Status == StatusUnknown && e.State.Raw != "" {
		return fmt.Sprintf("operation returned unrecognized state %q", e.State.Raw)
	}
	return fmt.Sprintf("operation reached state %s", e.State.Status)
}

// TimeoutError reports that a polling bound was exceeded before the
// operation reached a terminal state. The operation's actual final state is
// unknown; it may still be running remotely.
type TimeoutError struct {
	Iterations int
	Elapsed    time.Duration
	LastState  State
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for operation to complete after %s (%d polls, last state %s)",
		e.Elapsed.Round(time.Millisecond), e.Iterations, e.LastState.Raw)
}
