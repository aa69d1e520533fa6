package s3

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Upload stores a local file as an S3 object. Multipart handling is
// delegated to the transfer manager.
type Upload struct {
	connection.Connection `yaml:",inline"`

	Bucket         string `yaml:"bucket"`
	Key            string `yaml:"key"`
	From           string `yaml:"from"`
	ForcePathStyle bool   `yaml:"forcePathStyle,omitempty"`

	Metadata     map[string]string `yaml:"metadata,omitempty"`
	ContentType  string            `yaml:"contentType,omitempty"`
	CacheControl string            `yaml:"cacheControl,omitempty"`
	StorageClass string            `yaml:"storageClass,omitempty"`
	Tagging      map[string]string `yaml:"tagging,omitempty"`
}

// UploadOutput is the task output record.
type UploadOutput struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	ETag      string `json:"eTag,omitempty"`
	VersionID string `json:"versionId,omitempty"`
}

func init() {
	tasks.Register("aws.s3.upload", func() tasks.Task { return &Upload{} })
}

func (t *Upload) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	bucket, err := rc.Render(t.Bucket)
	if err != nil {
		return nil, err
	}
	key, err := rc.Render(t.Key)
	if err != nil {
		return nil, err
	}
	from, err := rc.Render(t.From)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection, t.ForcePathStyle)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(strings.TrimPrefix(from, "file://"))
	if err != nil {
		return nil, fmt.Errorf("failed to open upload source: %w", err)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if len(t.Metadata) > 0 {
		metadata, err := rc.RenderStringMap(t.Metadata)
		if err != nil {
			return nil, err
		}
		input.Metadata = metadata
	}
	if t.ContentType != "" {
		contentType, err := rc.Render(t.ContentType)
		if err != nil {
			return nil, err
		}
		input.ContentType = aws.String(contentType)
	}
	if t.CacheControl != "" {
		cacheControl, err := rc.Render(t.CacheControl)
		if err != nil {
			return nil, err
		}
		input.CacheControl = aws.String(cacheControl)
	}
	if t.StorageClass != "" {
		input.StorageClass = types.StorageClass(t.StorageClass)
	}
	if len(t.Tagging) > 0 {
		tagging, err := rc.RenderStringMap(t.Tagging)
		if err != nil {
			return nil, err
		}
		input.Tagging = aws.String(encodeTagging(tagging))
	}

	uploader := manager.NewUploader(client)
	result, err := uploader.Upload(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, key, err)
	}

	if info, err := file.Stat(); err == nil {
		rc.Metric(models.Counter("file.size", float64(info.Size())))
	}

	rc.Logger().WithField("key", key).Info("Uploaded object")

	output := UploadOutput{Bucket: bucket, Key: key}
	if result.ETag != nil {
		output.ETag = *result.ETag
	}
	if result.VersionID != nil {
		output.VersionID = *result.VersionID
	}
	return output, nil
}

// encodeTagging builds the URL-encoded tag set form PutObject expects.
func encodeTagging(tags map[string]string) string {
	values := url.Values{}
	for key, value := range tags {
		values.Set(key, value)
	}
	return values.Encode()
}
