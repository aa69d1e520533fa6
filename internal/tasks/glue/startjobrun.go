package glue

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/poller"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Glue job run state transitions are cheap to observe so the default poll
// interval is tighter than the Athena one.
const defaultJobRunInterval = 100 * time.Millisecond

// StartJobRun starts a Glue job and optionally waits for it to finish.
type StartJobRun struct {
	connection.Connection `yaml:",inline"`

	JobName       string            `yaml:"jobName"`
	Arguments     map[string]string `yaml:"arguments,omitempty"`
	Wait          *bool             `yaml:"wait,omitempty"`
	Interval      string            `yaml:"interval,omitempty"`
	MaxDuration   string            `yaml:"maxDuration,omitempty"`
	MaxIterations int               `yaml:"maxIterations,omitempty"`
}

type JobRunOutput struct {
	JobName      string  `json:"jobName"`
	JobRunID     string  `json:"jobRunId"`
	State        string  `json:"state,omitempty"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
	ExecutionSec float64 `json:"executionSeconds,omitempty"`
}

func init() {
	tasks.Register("aws.glue.startjobrun", func() tasks.Task { return &StartJobRun{} })
}

func (t *StartJobRun) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	jobName, err := rc.Render(t.JobName)
	if err != nil {
		return nil, err
	}
	arguments, err := rc.RenderStringMap(t.Arguments)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	started, err := client.StartJobRun(ctx, &glue.StartJobRunInput{
		JobName:   aws.String(jobName),
		Arguments: arguments,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start job run for %s: %w", jobName, err)
	}
	runID := aws.ToString(started.JobRunId)
	rc.Logger().WithField("jobName", jobName).WithField("jobRunId", runID).Debug("Job run started")

	if t.Wait != nil && !*t.Wait {
		return JobRunOutput{JobName: jobName, JobRunID: runID}, nil
	}

	opts, err := tasks.PollOptions(rc, t.Interval, t.MaxDuration, t.MaxIterations, defaultJobRunInterval)
	if err != nil {
		return nil, err
	}

	var last *glue.GetJobRunOutput
	final, err := poller.WaitTerminal(ctx, func(ctx context.Context) (poller.State, error) {
		resp, err := client.GetJobRun(ctx, &glue.GetJobRunInput{
			JobName: aws.String(jobName),
			RunId:   aws.String(runID),
		})
		if err != nil {
			return poller.State{}, err
		}
		last = resp
		return jobRunStates.Classify(string(resp.JobRun.JobRunState), aws.ToString(resp.JobRun.ErrorMessage)), nil
	}, opts)
	if err != nil {
		return nil, err
	}

	out := JobRunOutput{JobName: jobName, JobRunID: runID, State: final.Raw}
	if last != nil && last.JobRun != nil {
		out.ErrorMessage = aws.ToString(last.JobRun.ErrorMessage)
		out.ExecutionSec = float64(last.JobRun.ExecutionTime)
	}
	return out, nil
}
