package cloudformation

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/poller"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// DeleteStack removes a stack and optionally waits until it is gone.
type DeleteStack struct {
	connection.Connection `yaml:",inline"`

	StackName     string `yaml:"stackName"`
	Wait          *bool  `yaml:"wait,omitempty"`
	Interval      string `yaml:"interval,omitempty"`
	MaxDuration   string `yaml:"maxDuration,omitempty"`
	MaxIterations int    `yaml:"maxIterations,omitempty"`
}

type DeleteStackOutput struct {
	StackName string `json:"stackName"`
}

func init() {
	tasks.Register("aws.cloudformation.deletestack", func() tasks.Task { return &DeleteStack{} })
}

func (t *DeleteStack) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	stackName, err := rc.Render(t.StackName)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	if _, err := client.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: aws.String(stackName),
	}); err != nil {
		return nil, fmt.Errorf("failed to delete stack %s: %w", stackName, err)
	}
	rc.Logger().WithField("stackName", stackName).Info("Deleting stack")

	if t.Wait != nil && !*t.Wait {
		return DeleteStackOutput{StackName: stackName}, nil
	}

	opts, err := tasks.PollOptions(rc, t.Interval, t.MaxDuration, t.MaxIterations, defaultStackInterval)
	if err != nil {
		return nil, err
	}

	// Once deletion finishes, describing the stack by name stops resolving,
	// so that specific error is the success signal.
	if _, err := poller.WaitTerminal(ctx, func(ctx context.Context) (poller.State, error) {
		stack, err := describeStack(ctx, client, stackName)
		if err != nil {
			if strings.Contains(err.Error(), "does not exist") {
				return poller.State{Status: poller.StatusSucceeded, Raw: "DELETE_COMPLETE"}, nil
			}
			return poller.State{}, err
		}
		return stackStates.Classify(string(stack.StackStatus), aws.ToString(stack.StackStatusReason)), nil
	}, opts); err != nil {
		return nil, err
	}

	return DeleteStackOutput{StackName: stackName}, nil
}
