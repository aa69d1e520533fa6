package cloudformation

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/poller"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Stack transitions are slow compared to query-style services.
const defaultStackInterval = 5 * time.Second

// Settled stack statuses that make a subsequent submit an update instead of
// a create.
var updatableStatuses = []types.StackStatus{
	types.StackStatusCreateComplete,
	types.StackStatusUpdateComplete,
	types.StackStatusUpdateRollbackComplete,
}

// CreateStack submits a template as a stack, updating the stack in place
// when one with the same name already settled successfully.
type CreateStack struct {
	connection.Connection `yaml:",inline"`

	StackName     string            `yaml:"stackName"`
	TemplateBody  string            `yaml:"templateBody"`
	Parameters    map[string]string `yaml:"parameters,omitempty"`
	Capabilities  []string          `yaml:"capabilities,omitempty"`
	Wait          *bool             `yaml:"wait,omitempty"`
	Interval      string            `yaml:"interval,omitempty"`
	MaxDuration   string            `yaml:"maxDuration,omitempty"`
	MaxIterations int               `yaml:"maxIterations,omitempty"`
}

type StackOutput struct {
	StackName string            `json:"stackName"`
	StackID   string            `json:"stackId,omitempty"`
	Status    string            `json:"status,omitempty"`
	Outputs   map[string]string `json:"outputs,omitempty"`
}

func init() {
	tasks.Register("aws.cloudformation.createstack", func() tasks.Task { return &CreateStack{} })
}

func (t *CreateStack) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	stackName, err := rc.Render(t.StackName)
	if err != nil {
		return nil, err
	}
	templateBody, err := rc.Render(t.TemplateBody)
	if err != nil {
		return nil, err
	}
	parameters, err := rc.RenderStringMap(t.Parameters)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	exists, err := stackExists(ctx, client, stackName)
	if err != nil {
		return nil, err
	}

	stackParameters := make([]types.Parameter, 0, len(parameters))
	for key, value := range parameters {
		stackParameters = append(stackParameters, types.Parameter{
			ParameterKey:   aws.String(key),
			ParameterValue: aws.String(value),
		})
	}
	capabilities := make([]types.Capability, 0, len(t.Capabilities))
	for _, capability := range t.Capabilities {
		capabilities = append(capabilities, types.Capability(capability))
	}

	var stackID string
	if exists {
		resp, err := client.UpdateStack(ctx, &cloudformation.UpdateStackInput{
			StackName:    aws.String(stackName),
			TemplateBody: aws.String(templateBody),
			Parameters:   stackParameters,
			Capabilities: capabilities,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update stack %s: %w", stackName, err)
		}
		stackID = aws.ToString(resp.StackId)
		rc.Logger().WithField("stackName", stackName).Info("Updating existing stack")
	} else {
		resp, err := client.CreateStack(ctx, &cloudformation.CreateStackInput{
			StackName:    aws.String(stackName),
			TemplateBody: aws.String(templateBody),
			Parameters:   stackParameters,
			Capabilities: capabilities,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stack %s: %w", stackName, err)
		}
		stackID = aws.ToString(resp.StackId)
		rc.Logger().WithField("stackName", stackName).Info("Creating stack")
	}

	if t.Wait != nil && !*t.Wait {
		return StackOutput{StackName: stackName, StackID: stackID}, nil
	}

	opts, err := tasks.PollOptions(rc, t.Interval, t.MaxDuration, t.MaxIterations, defaultStackInterval)
	if err != nil {
		return nil, err
	}

	var stack *types.Stack
	final, err := poller.WaitTerminal(ctx, func(ctx context.Context) (poller.State, error) {
		current, err := describeStack(ctx, client, stackName)
		if err != nil {
			return poller.State{}, err
		}
		stack = current
		return stackStates.Classify(string(current.StackStatus), aws.ToString(current.StackStatusReason)), nil
	}, opts)
	if err != nil {
		return nil, err
	}

	out := StackOutput{StackName: stackName, StackID: stackID, Status: final.Raw}
	if stack != nil && len(stack.Outputs) > 0 {
		out.Outputs = make(map[string]string, len(stack.Outputs))
		for _, output := range stack.Outputs {
			out.Outputs[aws.ToString(output.OutputKey)] = aws.ToString(output.OutputValue)
		}
	}
	return out, nil
}

// stackExists only counts stacks in a settled-successful status: anything
// else either does not block creation (DELETE_COMPLETE) or cannot accept an
// update anyway.
func stackExists(ctx context.Context, client *cloudformation.Client, stackName string) (bool, error) {
	input := &cloudformation.ListStacksInput{StackStatusFilter: updatableStatuses}
	for {
		resp, err := client.ListStacks(ctx, input)
		if err != nil {
			return false, fmt.Errorf("failed to list stacks: %w", err)
		}
		for _, summary := range resp.StackSummaries {
			if aws.ToString(summary.StackName) == stackName {
				return true, nil
			}
		}
		if resp.NextToken == nil {
			return false, nil
		}
		input.NextToken = resp.NextToken
	}
}

func describeStack(ctx context.Context, client *cloudformation.Client, stackName string) (*types.Stack, error) {
	resp, err := client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s not found", stackName)
	}
	return &resp.Stacks[0], nil
}
