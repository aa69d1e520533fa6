// Package s3 contains the object storage tasks: upload, download, list,
// copy, delete, bucket creation and the bulk download/delete variants.
package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
)

// newClient builds a per-invocation S3 client from the task's connection
// properties. Path-style addressing is needed for S3-compatible backends
// that do not support virtual-hosted buckets.
func newClient(ctx context.Context, rc *runner.RunContext, conn connection.Connection, forcePathStyle bool) (*s3.Client, error) {
	clientConfig, err := conn.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, clientConfig)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if forcePathStyle {
			o.UsePathStyle = true
		}
	}), nil
}
