// Package emr contains the managed Hadoop cluster tasks and their EMR
// Serverless counterparts.
package emr

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/emr"
	"github.com/aws/aws-sdk-go-v2/service/emrserverless"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/poller"
	"github.com/flowstack-io/plugin-aws/internal/runner"
)

// WAITING counts as success: a keep-alive cluster that reaches it is ready
// for step submission, which is as settled as it gets.
var clusterStates = poller.NewClassifier(map[string]poller.Status{
	"STARTING":               poller.StatusPending,
	"BOOTSTRAPPING":          poller.StatusPending,
	"RUNNING":                poller.StatusRunning,
	"TERMINATING":            poller.StatusRunning,
	"WAITING":                poller.StatusSucceeded,
	"TERMINATED":             poller.StatusSucceeded,
	"TERMINATED_WITH_ERRORS": poller.StatusFailed,
})

func newClient(ctx context.Context, rc *runner.RunContext, conn connection.Connection) (*emr.Client, error) {
	cfg, err := conn.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return emr.NewFromConfig(awsCfg), nil
}

func newServerlessClient(ctx context.Context, rc *runner.RunContext, conn connection.Connection) (*emrserverless.Client, error) {
	cfg, err := conn.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return emrserverless.NewFromConfig(awsCfg), nil
}
