package emr

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// SubmitSteps adds Hadoop steps to a running cluster.
type SubmitSteps struct {
	connection.Connection `yaml:",inline"`

	ClusterID        string       `yaml:"clusterId"`
	Steps            []StepConfig `yaml:"steps"`
	ExecutionRoleArn string       `yaml:"executionRoleArn,omitempty"`
}

type SubmitStepsOutput struct {
	ClusterID string   `json:"clusterId"`
	StepIDs   []string `json:"stepIds"`
}

func init() {
	tasks.Register("aws.emr.submitsteps", func() tasks.Task { return &SubmitSteps{} })
}

func (t *SubmitSteps) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	if len(t.Steps) == 0 {
		return nil, fmt.Errorf("no steps to submit")
	}
	clusterID, err := rc.Render(t.ClusterID)
	if err != nil {
		return nil, err
	}
	steps, err := buildSteps(rc, t.Steps)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	input := &emr.AddJobFlowStepsInput{
		JobFlowId: aws.String(clusterID),
		Steps:     steps,
	}
	if t.ExecutionRoleArn != "" {
		roleArn, err := rc.Render(t.ExecutionRoleArn)
		if err != nil {
			return nil, err
		}
		input.ExecutionRoleArn = aws.String(roleArn)
	}

	resp, err := client.AddJobFlowSteps(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to submit steps to cluster %s: %w", clusterID, err)
	}

	rc.Logger().WithFields(map[string]any{
		"clusterId": clusterID,
		"steps":     len(resp.StepIds),
	}).Info("Submitted steps")

	return SubmitStepsOutput{ClusterID: clusterID, StepIDs: resp.StepIds}, nil
}
