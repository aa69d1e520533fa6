package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Download fetches an S3 object into internal storage and outputs its URI.
type Download struct {
	connection.Connection `yaml:",inline"`

	Bucket         string `yaml:"bucket"`
	Key            string `yaml:"key"`
	VersionID      string `yaml:"versionId,omitempty"`
	ForcePathStyle bool   `yaml:"forcePathStyle,omitempty"`
}

type DownloadOutput struct {
	Bucket        string            `json:"bucket"`
	Key           string            `json:"key"`
	URI           string            `json:"uri"`
	ContentLength int64             `json:"contentLength"`
	ContentType   string            `json:"contentType,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func init() {
	tasks.Register("aws.s3.download", func() tasks.Task { return &Download{} })
}

func (t *Download) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
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

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if t.VersionID != "" {
		versionID, err := rc.Render(t.VersionID)
		if err != nil {
			return nil, err
		}
		input.VersionId = aws.String(versionID)
	}

	file, err := rc.TempFile("")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	downloader := manager.NewDownloader(client)
	written, err := downloader.Download(ctx, file, input)
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	if err := file.Close(); err != nil {
		return nil, err
	}

	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket:    input.Bucket,
		Key:       input.Key,
		VersionId: input.VersionId,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read object attributes: %w", err)
	}

	uri, err := rc.Storage().PutFile(ctx, file.Name())
	if err != nil {
		return nil, err
	}

	rc.Metric(models.Counter("file.size", float64(written)))

	output := DownloadOutput{
		Bucket:        bucket,
		Key:           key,
		URI:           uri,
		ContentLength: written,
		Metadata:      head.Metadata,
	}
	if head.ContentType != nil {
		output.ContentType = *head.ContentType
	}
	return output, nil
}
