package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// CreateBucket creates a bucket; creating a bucket that the caller already
// owns is treated as success.
type CreateBucket struct {
	connection.Connection `yaml:",inline"`

	Bucket         string `yaml:"bucket"`
	ACL            string `yaml:"acl,omitempty"`
	ForcePathStyle bool   `yaml:"forcePathStyle,omitempty"`
}

type CreateBucketOutput struct {
	Bucket string `json:"bucket"`
	Region string `json:"region,omitempty"`
}

func init() {
	tasks.Register("aws.s3.createbucket", func() tasks.Task { return &CreateBucket{} })
}

func (t *CreateBucket) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	bucket, err := rc.Render(t.Bucket)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection, t.ForcePathStyle)
	if err != nil {
		return nil, err
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}
	if t.ACL != "" {
		input.ACL = types.BucketCannedACL(t.ACL)
	}

	if _, err := client.CreateBucket(ctx, input); err != nil {
		// LocalStack does not always return the modeled error type, so
		// match on the API error code as well.
		var owned *types.BucketAlreadyOwnedByYou
		var apiErr smithy.APIError
		alreadyOwned := errors.As(err, &owned) ||
			(errors.As(err, &apiErr) && apiErr.ErrorCode() == "BucketAlreadyOwnedByYou")
		if !alreadyOwned {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		rc.Logger().WithField("bucket", bucket).Debug("Bucket already owned")
	}

	location, err := client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read bucket location: %w", err)
	}

	return CreateBucketOutput{
		Bucket: bucket,
		Region: string(location.LocationConstraint),
	}, nil
}
