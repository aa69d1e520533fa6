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

// GetJobRun reads the current state of a single job run without waiting.
type GetJobRun struct {
	connection.Connection `yaml:",inline"`

	JobName  string `yaml:"jobName"`
	JobRunID string `yaml:"jobRunId"`
}

func init() {
	tasks.Register("aws.glue.getjobrun", func() tasks.Task { return &GetJobRun{} })
}

func (t *GetJobRun) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
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

	resp, err := client.GetJobRun(ctx, &glue.GetJobRunInput{
		JobName: aws.String(jobName),
		RunId:   aws.String(runID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get job run %s: %w", runID, err)
	}

	return JobRunOutput{
		JobName:      jobName,
		JobRunID:     runID,
		State:        string(resp.JobRun.JobRunState),
		ErrorMessage: aws.ToString(resp.JobRun.ErrorMessage),
		ExecutionSec: float64(resp.JobRun.ExecutionTime),
	}, nil
}
