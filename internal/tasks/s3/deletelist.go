package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// DeleteObjects accepts at most 1000 keys per request.
const deleteBatchSize = 1000

// DeleteList removes every object matching the listing filters, batched
// through the bulk delete API.
type DeleteList struct {
	connection.Connection `yaml:",inline"`

	Bucket         string `yaml:"bucket"`
	Prefix         string `yaml:"prefix,omitempty"`
	Delimiter      string `yaml:"delimiter,omitempty"`
	Marker         string `yaml:"marker,omitempty"`
	Regexp         string `yaml:"regexp,omitempty"`
	MaxKeys        int32  `yaml:"maxKeys,omitempty"`
	ErrorOnEmpty   bool   `yaml:"errorOnEmpty,omitempty"`
	ForcePathStyle bool   `yaml:"forcePathStyle,omitempty"`
}

type DeleteListOutput struct {
	Count int64 `json:"count"`
	Size  int64 `json:"size"`
}

func init() {
	tasks.Register("aws.s3.deletelist", func() tasks.Task { return &DeleteList{} })
}

func (t *DeleteList) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	bucket, err := rc.Render(t.Bucket)
	if err != nil {
		return nil, err
	}

	inner := &List{
		Connection:     t.Connection,
		Bucket:         t.Bucket,
		Prefix:         t.Prefix,
		Delimiter:      t.Delimiter,
		Marker:         t.Marker,
		Regexp:         t.Regexp,
		MaxKeys:        t.MaxKeys,
		ForcePathStyle: t.ForcePathStyle,
	}
	out, err := inner.Run(ctx, rc)
	if err != nil {
		return nil, err
	}
	listed := out.(ListOutput)

	if len(listed.Objects) == 0 {
		if t.ErrorOnEmpty {
			return nil, fmt.Errorf("no objects to delete in s3://%s with prefix %q regexp %q", bucket, t.Prefix, t.Regexp)
		}
		return DeleteListOutput{}, nil
	}

	client, err := newClient(ctx, rc, t.Connection, t.ForcePathStyle)
	if err != nil {
		return nil, err
	}

	var size int64
	for _, object := range listed.Objects {
		size += object.Size
	}

	for _, batch := range batchKeys(listed.Objects, deleteBatchSize) {
		resp, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: batch, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to delete objects from s3://%s: %w", bucket, err)
		}
		if len(resp.Errors) > 0 {
			first := resp.Errors[0]
			return nil, fmt.Errorf("failed to delete %d objects from s3://%s: %s: %s",
				len(resp.Errors), bucket, aws.ToString(first.Key), aws.ToString(first.Message))
		}
	}

	count := int64(len(listed.Objects))
	rc.Metric(models.Counter("count", float64(count)))
	rc.Metric(models.Counter("size", float64(size)))
	rc.Logger().WithFields(map[string]any{
		"bucket": bucket,
		"count":  count,
		"size":   size,
	}).Info("Deleted objects")

	return DeleteListOutput{Count: count, Size: size}, nil
}

// batchKeys splits the listed objects into delete requests of at most
// batchSize identifiers.
func batchKeys(objects []ListedObject, batchSize int) [][]types.ObjectIdentifier {
	var batches [][]types.ObjectIdentifier
	for start := 0; start < len(objects); start += batchSize {
		end := start + batchSize
		if end > len(objects) {
			end = len(objects)
		}
		batch := make([]types.ObjectIdentifier, 0, end-start)
		for _, object := range objects[start:end] {
			batch = append(batch, types.ObjectIdentifier{Key: aws.String(object.Key)})
		}
		batches = append(batches, batch)
	}
	return batches
}
