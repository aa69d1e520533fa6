package cloudwatch

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
)

func newClient(ctx context.Context, rc *runner.RunContext, conn connection.Connection) (*cloudwatch.Client, error) {
	cfg, err := conn.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return cloudwatch.NewFromConfig(awsCfg), nil
}
