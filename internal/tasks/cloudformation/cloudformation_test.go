package cloudformation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowstack-io/plugin-aws/internal/poller"
)

func TestStackStateClassification(t *testing.T) {
	tests := []struct {
		raw      string
		expected poller.Status
	}{
		{raw: "CREATE_IN_PROGRESS", expected: poller.StatusPending},
		{raw: "UPDATE_IN_PROGRESS", expected: poller.StatusRunning},
		{raw: "DELETE_IN_PROGRESS", expected: poller.StatusRunning},
		{raw: "CREATE_COMPLETE", expected: poller.StatusSucceeded},
		{raw: "UPDATE_COMPLETE", expected: poller.StatusSucceeded},
		{raw: "DELETE_COMPLETE", expected: poller.StatusSucceeded},
		{raw: "CREATE_FAILED", expected: poller.StatusFailed},
		{raw: "ROLLBACK_COMPLETE", expected: poller.StatusFailed},
		{raw: "UPDATE_ROLLBACK_COMPLETE", expected: poller.StatusFailed},
		{raw: "SOMETHING_NEW", expected: poller.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			state := stackStates.Classify(tt.raw, "reason")
			assert.Equal(t, tt.expected, state.Status)
			assert.Equal(t, tt.raw, state.Raw)
		})
	}
}

func TestRollbackStatesAreTerminalFailures(t *testing.T) {
	for _, raw := range []string{"ROLLBACK_COMPLETE", "ROLLBACK_FAILED", "UPDATE_ROLLBACK_FAILED"} {
		state := stackStates.Classify(raw, "")
		assert.True(t, state.Status.Terminal(), raw)
		assert.Equal(t, poller.StatusFailed, state.Status, raw)
	}
}
