package emr

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr"
	"github.com/aws/aws-sdk-go-v2/service/emr/types"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/poller"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

const (
	defaultReleaseLabel    = "emr-5.20.0"
	defaultJobFlowRole     = "EMR_EC2_DefaultRole"
	defaultServiceRole     = "EMR_DefaultRole"
	defaultClusterInterval = 10 * time.Second
	defaultClusterTimeout  = time.Hour
)

// CreateCluster provisions a cluster and optionally submits steps with it,
// then can wait until the cluster settles.
type CreateCluster struct {
	connection.Connection `yaml:",inline"`

	ClusterName        string       `yaml:"clusterName"`
	ReleaseLabel       string       `yaml:"releaseLabel,omitempty"`
	Steps              []StepConfig `yaml:"steps,omitempty"`
	Applications       []string     `yaml:"applications,omitempty"`
	LogURI             string       `yaml:"logUri,omitempty"`
	JobFlowRole        string       `yaml:"jobFlowRole,omitempty"`
	ServiceRole        string       `yaml:"serviceRole,omitempty"`
	VisibleToAllUsers  *bool        `yaml:"visibleToAllUsers,omitempty"`
	MasterInstanceType string       `yaml:"masterInstanceType,omitempty"`
	SlaveInstanceType  string       `yaml:"slaveInstanceType,omitempty"`
	InstanceCount      int32        `yaml:"instanceCount,omitempty"`
	KeepJobFlowAlive   bool         `yaml:"keepJobFlowAliveWhenNoSteps,omitempty"`
	EC2KeyName         string       `yaml:"ec2KeyName,omitempty"`
	EC2SubnetID        string       `yaml:"ec2SubnetId,omitempty"`
	Wait               bool         `yaml:"wait,omitempty"`
	Interval           string       `yaml:"interval,omitempty"`
	MaxDuration        string       `yaml:"maxDuration,omitempty"`
	MaxIterations      int          `yaml:"maxIterations,omitempty"`
}

type ClusterOutput struct {
	ClusterID string `json:"clusterId"`
	State     string `json:"state,omitempty"`
}

func init() {
	tasks.Register("aws.emr.createcluster", func() tasks.Task { return &CreateCluster{} })
}

func (t *CreateCluster) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	clusterName, err := rc.Render(t.ClusterName)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	input, err := t.buildInput(rc, clusterName)
	if err != nil {
		return nil, err
	}

	resp, err := client.RunJobFlow(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster %s: %w", clusterName, err)
	}
	clusterID := aws.ToString(resp.JobFlowId)
	rc.Logger().WithField("clusterId", clusterID).Info("Cluster creation submitted")

	if !t.Wait {
		return ClusterOutput{ClusterID: clusterID}, nil
	}

	opts, err := tasks.PollOptions(rc, t.Interval, t.MaxDuration, t.MaxIterations, defaultClusterInterval)
	if err != nil {
		return nil, err
	}
	if opts.MaxDuration == 0 {
		opts.MaxDuration = defaultClusterTimeout
	}

	final, err := poller.WaitTerminal(ctx, func(ctx context.Context) (poller.State, error) {
		described, err := client.DescribeCluster(ctx, &emr.DescribeClusterInput{
			ClusterId: aws.String(clusterID),
		})
		if err != nil {
			return poller.State{}, err
		}
		status := described.Cluster.Status
		var reason string
		if status.StateChangeReason != nil {
			reason = aws.ToString(status.StateChangeReason.Message)
		}
		return clusterStates.Classify(string(status.State), reason), nil
	}, opts)
	if err != nil {
		return nil, err
	}

	return ClusterOutput{ClusterID: clusterID, State: final.Raw}, nil
}

func (t *CreateCluster) buildInput(rc *runner.RunContext, clusterName string) (*emr.RunJobFlowInput, error) {
	releaseLabel := t.ReleaseLabel
	if releaseLabel == "" {
		releaseLabel = defaultReleaseLabel
	}
	jobFlowRole := t.JobFlowRole
	if jobFlowRole == "" {
		jobFlowRole = defaultJobFlowRole
	}
	serviceRole := t.ServiceRole
	if serviceRole == "" {
		serviceRole = defaultServiceRole
	}
	visible := true
	if t.VisibleToAllUsers != nil {
		visible = *t.VisibleToAllUsers
	}

	steps, err := buildSteps(rc, t.Steps)
	if err != nil {
		return nil, err
	}

	applications := make([]types.Application, 0, len(t.Applications))
	for _, name := range t.Applications {
		applications = append(applications, types.Application{Name: aws.String(name)})
	}

	instances := &types.JobFlowInstancesConfig{
		KeepJobFlowAliveWhenNoSteps: aws.Bool(t.KeepJobFlowAlive),
	}
	if t.MasterInstanceType != "" {
		instances.MasterInstanceType = aws.String(t.MasterInstanceType)
	}
	if t.SlaveInstanceType != "" {
		instances.SlaveInstanceType = aws.String(t.SlaveInstanceType)
	}
	if t.InstanceCount > 0 {
		instances.InstanceCount = aws.Int32(t.InstanceCount)
	}
	if t.EC2KeyName != "" {
		keyName, err := rc.Render(t.EC2KeyName)
		if err != nil {
			return nil, err
		}
		instances.Ec2KeyName = aws.String(keyName)
	}
	if t.EC2SubnetID != "" {
		subnetID, err := rc.Render(t.EC2SubnetID)
		if err != nil {
			return nil, err
		}
		instances.Ec2SubnetId = aws.String(subnetID)
	}

	input := &emr.RunJobFlowInput{
		Name:              aws.String(clusterName),
		ReleaseLabel:      aws.String(releaseLabel),
		JobFlowRole:       aws.String(jobFlowRole),
		ServiceRole:       aws.String(serviceRole),
		VisibleToAllUsers: aws.Bool(visible),
		Instances:         instances,
		Steps:             steps,
		Applications:      applications,
	}
	if t.LogURI != "" {
		logURI, err := rc.Render(t.LogURI)
		if err != nil {
			return nil, err
		}
		input.LogUri = aws.String(logURI)
	}
	return input, nil
}
