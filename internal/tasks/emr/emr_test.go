package emr

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstack-io/plugin-aws/internal/poller"
	"github.com/flowstack-io/plugin-aws/internal/runner"
)

func newTestContext(t *testing.T, variables map[string]any) *runner.RunContext {
	t.Helper()
	rc, err := runner.NewRunContext(t.TempDir(), runner.WithVariables(variables))
	require.NoError(t, err)
	return rc
}

func TestClusterStateClassification(t *testing.T) {
	tests := []struct {
		raw      string
		expected poller.Status
	}{
		{raw: "STARTING", expected: poller.StatusPending},
		{raw: "BOOTSTRAPPING", expected: poller.StatusPending},
		{raw: "RUNNING", expected: poller.StatusRunning},
		{raw: "TERMINATING", expected: poller.StatusRunning},
		{raw: "WAITING", expected: poller.StatusSucceeded},
		{raw: "TERMINATED", expected: poller.StatusSucceeded},
		{raw: "TERMINATED_WITH_ERRORS", expected: poller.StatusFailed},
		{raw: "REBOOTING", expected: poller.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, clusterStates.Classify(tt.raw, "").Status)
		})
	}
}

func TestSplitCommands(t *testing.T) {
	assert.Nil(t, splitCommands(nil))

	args := splitCommands([]string{
		"spark-submit s3://bucket/job.py --data s3://bucket/in.csv",
		"--verbose",
	})
	assert.Equal(t, []string{
		"spark-submit", "s3://bucket/job.py", "--data", "s3://bucket/in.csv", "--verbose",
	}, args)
}

func TestStepConfigToStep(t *testing.T) {
	rc := newTestContext(t, map[string]any{"jobName": "etl"})

	config := StepConfig{
		Name:      "${ .jobName }",
		Jar:       "command-runner.jar",
		MainClass: "com.example.Main",
		Commands:  []string{"spark-submit app.py --mode full"},
	}

	step, err := config.toStep(rc)
	require.NoError(t, err)

	assert.Equal(t, "etl", aws.ToString(step.Name))
	assert.Equal(t, types.ActionOnFailureTerminateCluster, step.ActionOnFailure)
	assert.Equal(t, "command-runner.jar", aws.ToString(step.HadoopJarStep.Jar))
	assert.Equal(t, "com.example.Main", aws.ToString(step.HadoopJarStep.MainClass))
	assert.Equal(t, []string{"spark-submit", "app.py", "--mode", "full"}, step.HadoopJarStep.Args)
}

func TestStepConfigActionOnFailure(t *testing.T) {
	rc := newTestContext(t, nil)

	config := StepConfig{
		Name:            "step",
		Jar:             "runner.jar",
		ActionOnFailure: "CONTINUE",
	}
	step, err := config.toStep(rc)
	require.NoError(t, err)
	assert.Equal(t, types.ActionOnFailureContinue, step.ActionOnFailure)
}

func TestStepConfigRequiresNameAndJar(t *testing.T) {
	rc := newTestContext(t, nil)

	_, err := StepConfig{Jar: "runner.jar"}.toStep(rc)
	assert.Error(t, err)

	_, err = StepConfig{Name: "step"}.toStep(rc)
	assert.Error(t, err)
}
