package emr

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emrserverless"
	serverlesstypes "github.com/aws/aws-sdk-go-v2/service/emrserverless/types"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// CreateServerlessApplication provisions an EMR Serverless application.
type CreateServerlessApplication struct {
	connection.Connection `yaml:",inline"`

	ReleaseLabel    string `yaml:"releaseLabel"`
	ApplicationType string `yaml:"applicationType"`
}

type ServerlessApplicationOutput struct {
	ApplicationID string `json:"applicationId"`
}

// StartServerlessJobRun submits a Spark job to an EMR Serverless
// application.
type StartServerlessJobRun struct {
	connection.Connection `yaml:",inline"`

	ApplicationID       string   `yaml:"applicationId"`
	ExecutionRoleArn    string   `yaml:"executionRoleArn"`
	JobName             string   `yaml:"jobName"`
	EntryPoint          string   `yaml:"entryPoint"`
	EntryPointArguments []string `yaml:"entryPointArguments,omitempty"`
}

type ServerlessJobRunOutput struct {
	JobRunID string `json:"jobRunId"`
}

// DeleteServerlessApplication removes one or more EMR Serverless
// applications.
type DeleteServerlessApplication struct {
	connection.Connection `yaml:",inline"`

	ApplicationIDs []string `yaml:"applicationIds"`
}

type DeleteServerlessApplicationOutput struct {
	ApplicationIDs []string `json:"applicationIds"`
}

func init() {
	tasks.Register("aws.emr.createserverlessapplication", func() tasks.Task { return &CreateServerlessApplication{} })
	tasks.Register("aws.emr.startserverlessjobrun", func() tasks.Task { return &StartServerlessJobRun{} })
	tasks.Register("aws.emr.deleteserverlessapplication", func() tasks.Task { return &DeleteServerlessApplication{} })
}

func (t *CreateServerlessApplication) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	releaseLabel, err := rc.Render(t.ReleaseLabel)
	if err != nil {
		return nil, err
	}
	applicationType, err := rc.Render(t.ApplicationType)
	if err != nil {
		return nil, err
	}

	client, err := newServerlessClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	resp, err := client.CreateApplication(ctx, &emrserverless.CreateApplicationInput{
		ReleaseLabel: aws.String(releaseLabel),
		Type:         aws.String(applicationType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create serverless application: %w", err)
	}

	applicationID := aws.ToString(resp.ApplicationId)
	rc.Logger().WithField("applicationId", applicationID).Info("Created serverless application")

	return ServerlessApplicationOutput{ApplicationID: applicationID}, nil
}

func (t *StartServerlessJobRun) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	applicationID, err := rc.Render(t.ApplicationID)
	if err != nil {
		return nil, err
	}
	roleArn, err := rc.Render(t.ExecutionRoleArn)
	if err != nil {
		return nil, err
	}
	jobName, err := rc.Render(t.JobName)
	if err != nil {
		return nil, err
	}
	entryPoint, err := rc.Render(t.EntryPoint)
	if err != nil {
		return nil, err
	}
	arguments := make([]string, 0, len(t.EntryPointArguments))
	for _, raw := range t.EntryPointArguments {
		rendered, err := rc.Render(raw)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, rendered)
	}

	client, err := newServerlessClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	resp, err := client.StartJobRun(ctx, &emrserverless.StartJobRunInput{
		ApplicationId:    aws.String(applicationID),
		ExecutionRoleArn: aws.String(roleArn),
		Name:             aws.String(jobName),
		JobDriver: &serverlesstypes.JobDriverMemberSparkSubmit{
			Value: serverlesstypes.SparkSubmit{
				EntryPoint:          aws.String(entryPoint),
				EntryPointArguments: arguments,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start serverless job %s: %w", jobName, err)
	}

	jobRunID := aws.ToString(resp.JobRunId)
	rc.Logger().WithField("jobRunId", jobRunID).Info("Started serverless job")

	return ServerlessJobRunOutput{JobRunID: jobRunID}, nil
}

func (t *DeleteServerlessApplication) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	if len(t.ApplicationIDs) == 0 {
		return nil, fmt.Errorf("no application ids to delete")
	}

	client, err := newServerlessClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	applicationIDs := make([]string, 0, len(t.ApplicationIDs))
	for _, raw := range t.ApplicationIDs {
		applicationID, err := rc.Render(raw)
		if err != nil {
			return nil, err
		}
		if _, err := client.DeleteApplication(ctx, &emrserverless.DeleteApplicationInput{
			ApplicationId: aws.String(applicationID),
		}); err != nil {
			return nil, fmt.Errorf("failed to delete application %s: %w", applicationID, err)
		}
		applicationIDs = append(applicationIDs, applicationID)
	}

	rc.Logger().WithField("applications", applicationIDs).Info("Deleted serverless applications")

	return DeleteServerlessApplicationOutput{ApplicationIDs: applicationIDs}, nil
}
