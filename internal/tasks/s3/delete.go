package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Delete removes a single object from a bucket.
type Delete struct {
	connection.Connection `yaml:",inline"`

	Bucket         string `yaml:"bucket"`
	Key            string `yaml:"key"`
	ForcePathStyle bool   `yaml:"forcePathStyle,omitempty"`
}

type DeleteOutput struct {
	VersionID    string `json:"versionId,omitempty"`
	DeleteMarker bool   `json:"deleteMarker,omitempty"`
}

func init() {
	tasks.Register("aws.s3.delete", func() tasks.Task { return &Delete{} })
}

func (t *Delete) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	bucket, err := rc.Render(t.Bucket)
	if err != nil {
		return nil, err
	}
	key, err := rc.Render(t.Key)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection, t.ForcePathStyle)
	if err != nil {
		return nil, err
	}

	result, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete s3://%s/%s: %w", bucket, key, err)
	}

	rc.Logger().WithField("key", key).Info("Deleted object")

	return DeleteOutput{
		VersionID:    aws.ToString(result.VersionId),
		DeleteMarker: aws.ToBool(result.DeleteMarker),
	}, nil
}
