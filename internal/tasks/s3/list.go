package s3

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// List enumerates objects in a bucket, optionally filtered by prefix and a
// key regexp.
type List struct {
	connection.Connection `yaml:",inline"`

	Bucket         string `yaml:"bucket"`
	Prefix         string `yaml:"prefix,omitempty"`
	Delimiter      string `yaml:"delimiter,omitempty"`
	Marker         string `yaml:"marker,omitempty"`
	Regexp         string `yaml:"regexp,omitempty"`
	MaxKeys        int32  `yaml:"maxKeys,omitempty"`
	ForcePathStyle bool   `yaml:"forcePathStyle,omitempty"`
}

type ListedObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"eTag,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

type ListOutput struct {
	Objects []ListedObject `json:"objects"`
}

func init() {
	tasks.Register("aws.s3.list", func() tasks.Task { return &List{} })
}

func (t *List) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	bucket, err := rc.Render(t.Bucket)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection, t.ForcePathStyle)
	if err != nil {
		return nil, err
	}

	input := &s3.ListObjectsInput{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(1000),
	}
	if t.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(t.MaxKeys)
	}
	for _, field := range []struct {
		value  string
		target **string
	}{
		{t.Prefix, &input.Prefix},
		{t.Delimiter, &input.Delimiter},
		{t.Marker, &input.Marker},
	} {
		if field.value == "" {
			continue
		}
		rendered, err := rc.Render(field.value)
		if err != nil {
			return nil, err
		}
		*field.target = aws.String(rendered)
	}

	var keyFilter *regexp.Regexp
	if t.Regexp != "" {
		pattern, err := rc.Render(t.Regexp)
		if err != nil {
			return nil, err
		}
		keyFilter, err = regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid key regexp: %w", err)
		}
	}

	result, err := client.ListObjects(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list s3://%s: %w", bucket, err)
	}

	objects := make([]ListedObject, 0, len(result.Contents))
	for _, object := range result.Contents {
		key := aws.ToString(object.Key)
		if keyFilter != nil && !keyFilter.MatchString(key) {
			continue
		}
		listed := ListedObject{
			Key:  key,
			Size: aws.ToInt64(object.Size),
			ETag: aws.ToString(object.ETag),
		}
		if object.LastModified != nil {
			listed.LastModified = *object.LastModified
		}
		objects = append(objects, listed)
	}

	rc.Metric(models.Counter("list.size", float64(len(objects))))
	rc.Logger().WithFields(map[string]any{
		"bucket": bucket,
		"count":  len(objects),
	}).Debug("Listed objects")

	return ListOutput{Objects: objects}, nil
}
