package glue

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/glue"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/poller"
	"github.com/flowstack-io/plugin-aws/internal/runner"
)

var jobRunStates = poller.NewClassifier(map[string]poller.Status{
	"STARTING":  poller.StatusPending,
	"WAITING":   poller.StatusPending,
	"RUNNING":   poller.StatusRunning,
	"STOPPING":  poller.StatusRunning,
	"SUCCEEDED": poller.StatusSucceeded,
	"FAILED":    poller.StatusFailed,
	"ERROR":     poller.StatusFailed,
	"TIMEOUT":   poller.StatusFailed,
	"EXPIRED":   poller.StatusFailed,
	"STOPPED":   poller.StatusCancelled,
})

func newClient(ctx context.Context, rc *runner.RunContext, conn connection.Connection) (*glue.Client, error) {
	cfg, err := conn.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return glue.NewFromConfig(awsCfg), nil
}
