package glue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowstack-io/plugin-aws/internal/poller"
)

func TestJobRunStateClassification(t *testing.T) {
	transient := []string{"STARTING", "WAITING", "RUNNING", "STOPPING"}
	for _, state := range transient {
		assert.False(t, jobRunStates.Classify(state, "").Status.Terminal(), state)
	}

	assert.Equal(t, poller.StatusSucceeded, jobRunStates.Classify("SUCCEEDED", "").Status)
	assert.Equal(t, poller.StatusCancelled, jobRunStates.Classify("STOPPED", "").Status)

	for _, state := range []string{"FAILED", "ERROR", "TIMEOUT", "EXPIRED"} {
		assert.Equal(t, poller.StatusFailed, jobRunStates.Classify(state, "").Status, state)
	}

	unknown := jobRunStates.Classify("BRAND_NEW_STATE", "")
	assert.Equal(t, poller.StatusUnknown, unknown.Status)
	assert.True(t, unknown.Status.Terminal())
}
