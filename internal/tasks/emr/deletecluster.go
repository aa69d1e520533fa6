package emr

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/emr"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// DeleteCluster terminates one or more clusters. Termination is
// asynchronous on the service side; this task does not wait for it.
type DeleteCluster struct {
	connection.Connection `yaml:",inline"`

	ClusterIDs []string `yaml:"clusterIds"`
}

type DeleteClusterOutput struct {
	ClusterIDs []string `json:"clusterIds"`
}

func init() {
	tasks.Register("aws.emr.deletecluster", func() tasks.Task { return &DeleteCluster{} })
}

func (t *DeleteCluster) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	if len(t.ClusterIDs) == 0 {
		return nil, fmt.Errorf("no cluster ids to terminate")
	}

	clusterIDs := make([]string, 0, len(t.ClusterIDs))
	for _, raw := range t.ClusterIDs {
		rendered, err := rc.Render(raw)
		if err != nil {
			return nil, err
		}
		clusterIDs = append(clusterIDs, rendered)
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	if _, err := client.TerminateJobFlows(ctx, &emr.TerminateJobFlowsInput{
		JobFlowIds: clusterIDs,
	}); err != nil {
		return nil, fmt.Errorf("failed to terminate clusters: %w", err)
	}

	rc.Logger().WithField("clusterIds", clusterIDs).Info("Terminated clusters")

	return DeleteClusterOutput{ClusterIDs: clusterIDs}, nil
}
