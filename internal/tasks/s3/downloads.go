package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Downloads fetches every object matching the listing filters into internal
// storage. Keys ending in a slash are directory placeholders and are
// skipped.
type Downloads struct {
	connection.Connection `yaml:",inline"`

	Bucket         string `yaml:"bucket"`
	Prefix         string `yaml:"prefix,omitempty"`
	Delimiter      string `yaml:"delimiter,omitempty"`
	Marker         string `yaml:"marker,omitempty"`
	Regexp         string `yaml:"regexp,omitempty"`
	MaxKeys        int32  `yaml:"maxKeys,omitempty"`
	ForcePathStyle bool   `yaml:"forcePathStyle,omitempty"`
}

type DownloadedObject struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	URI  string `json:"uri"`
}

type DownloadsOutput struct {
	Objects   []DownloadedObject `json:"objects"`
	Files     map[string]string  `json:"files"`
	TotalSize int64              `json:"totalSize"`
}

func init() {
	tasks.Register("aws.s3.downloads", func() tasks.Task { return &Downloads{} })
}

func (t *Downloads) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	bucket, err := rc.Render(t.Bucket)
	if err != nil {
		return nil, err
	}

	listed, err := t.list(ctx, rc)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection, t.ForcePathStyle)
	if err != nil {
		return nil, err
	}
	downloader := manager.NewDownloader(client)

	objects := make([]DownloadedObject, 0, len(listed.Objects))
	files := make(map[string]string, len(listed.Objects))
	var totalSize int64
	for _, object := range listed.Objects {
		if strings.HasSuffix(object.Key, "/") {
			continue
		}

		file, err := rc.TempFile("")
		if err != nil {
			return nil, err
		}
		written, err := downloader.Download(ctx, file, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(object.Key),
		})
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, object.Key, err)
		}
		if err := file.Close(); err != nil {
			return nil, err
		}

		uri, err := rc.Storage().PutFile(ctx, file.Name())
		if err != nil {
			return nil, err
		}

		objects = append(objects, DownloadedObject{Key: object.Key, Size: written, URI: uri})
		files[object.Key] = uri
		totalSize += written
	}

	rc.Metric(models.Counter("files.count", float64(len(objects))))
	rc.Metric(models.Counter("files.size.total", float64(totalSize)))
	rc.Logger().WithFields(map[string]any{
		"bucket": bucket,
		"count":  len(objects),
	}).Info("Downloaded objects")

	return DownloadsOutput{Objects: objects, Files: files, TotalSize: totalSize}, nil
}

// list delegates to the single-purpose listing task so both share filter
// semantics.
func (t *Downloads) list(ctx context.Context, rc *runner.RunContext) (ListOutput, error) {
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
		return ListOutput{}, err
	}
	return out.(ListOutput), nil
}
