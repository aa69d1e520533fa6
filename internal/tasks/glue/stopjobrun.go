package glue

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// StopJobRun requests cancellation of a running job run. Glue performs the
// stop asynchronously; pair with GetJobRun to observe the final state.
type StopJobRun struct {
	connection.Connection `yaml:",inline"`

	JobName  string `yaml:"jobName"`
	JobRunID string `yaml:"jobRunId"`
}

type StopJobRunOutput struct {
	JobName  string `json:"jobName"`
	JobRunID string `json:"jobRunId"`
}

func init() {
	tasks.Register("aws.glue.stopjobrun", func() tasks.Task { return &StopJobRun{} })
}

func (t *StopJobRun) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	jobName, err := rc.Render(t.JobName)
	if err != nil {
		return nil, err
	}
	runID, err := rc.Render(t.JobRunID)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	resp, err := client.BatchStopJobRun(ctx, &glue.BatchStopJobRunInput{
		JobName:   aws.String(jobName),
		JobRunIds: []string{runID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stop job run %s: %w", runID, err)
	}
	if len(resp.Errors) > 0 {
		detail := resp.Errors[0].ErrorDetail
		return nil, fmt.Errorf("failed to stop job run %s: %s", runID, aws.ToString(detail.ErrorMessage))
	}

	return StopJobRunOutput{JobName: jobName, JobRunID: runID}, nil
}
