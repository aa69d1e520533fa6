package tasks_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	s3tasks "github.com/flowstack-io/plugin-aws/internal/tasks/s3"
	sqstasks "github.com/flowstack-io/plugin-aws/internal/tasks/sqs"
)

func TestTasksFunctional(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping functional test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	localstackContainer, err := localstack.Run(ctx,
		"localstack/localstack:3.0",
		testcontainers.WithEnv(map[string]string{
			"SERVICES": "s3,sqs",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").
				WithPort("4566/tcp").
				WithStartupTimeout(60*time.Second).
				WithPollInterval(1*time.Second),
		),
	)
	require.NoError(t, err)
	defer func() {
		terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := localstackContainer.Terminate(terminateCtx); err != nil {
			t.Logf("Failed to terminate LocalStack container: %v", err)
		}
	}()

	host, err := localstackContainer.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := localstackContainer.MappedPort(ctx, "4566/tcp")
	require.NoError(t, err)
	endpoint := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	conn := connection.Connection{
		AccessKeyID:      "test",
		SecretKeyID:      "test",
		Region:           "us-east-1",
		EndpointOverride: endpoint,
	}

	rc, err := runner.NewRunContext(t.TempDir())
	require.NoError(t, err)

	t.Run("s3 roundtrip", func(t *testing.T) {
		source := filepath.Join(t.TempDir(), "payload.txt")
		require.NoError(t, os.WriteFile(source, []byte("functional test payload"), 0o644))

		createBucket := &s3tasks.CreateBucket{
			Connection:     conn,
			Bucket:         "functional-bucket",
			ForcePathStyle: true,
		}
		_, err := createBucket.Run(ctx, rc)
		require.NoError(t, err)

		upload := &s3tasks.Upload{
			Connection:     conn,
			Bucket:         "functional-bucket",
			Key:            "data/payload.txt",
			From:           source,
			ForcePathStyle: true,
		}
		uploadOut, err := upload.Run(ctx, rc)
		require.NoError(t, err)
		assert.Equal(t, "data/payload.txt", uploadOut.(s3tasks.UploadOutput).Key)

		list := &s3tasks.List{
			Connection:     conn,
			Bucket:         "functional-bucket",
			Prefix:         "data/",
			ForcePathStyle: true,
		}
		listOut, err := list.Run(ctx, rc)
		require.NoError(t, err)
		require.Len(t, listOut.(s3tasks.ListOutput).Objects, 1)

		download := &s3tasks.Download{
			Connection:     conn,
			Bucket:         "functional-bucket",
			Key:            "data/payload.txt",
			ForcePathStyle: true,
		}
		downloadOut, err := download.Run(ctx, rc)
		require.NoError(t, err)

		uri := downloadOut.(s3tasks.DownloadOutput).URI
		content, err := os.ReadFile(strings.TrimPrefix(uri, "file://"))
		require.NoError(t, err)
		assert.Equal(t, "functional test payload", string(content))
	})

	t.Run("sqs publish and consume", func(t *testing.T) {
		cfg, err := conn.Resolve(rc)
		require.NoError(t, err)
		awsCfg, err := connection.Load(ctx, cfg)
		require.NoError(t, err)

		created, err := awssqs.NewFromConfig(awsCfg).CreateQueue(ctx, &awssqs.CreateQueueInput{
			QueueName: aws.String("functional-queue"),
		})
		require.NoError(t, err)
		queueURL := aws.ToString(created.QueueUrl)

		publish := &sqstasks.Publish{
			Connection: conn,
			QueueURL:   queueURL,
			From: []any{
				map[string]any{"order": "1"},
				map[string]any{"order": "2"},
			},
		}
		publishOut, err := publish.Run(ctx, rc)
		require.NoError(t, err)
		assert.Equal(t, 2, publishOut.(sqstasks.PublishOutput).MessagesCount)

		consume := &sqstasks.Consume{
			Connection: conn,
			QueueURL:   queueURL,
			MaxRecords: 2,
			SerdeType:  "JSON",
		}
		consumeOut, err := consume.Run(ctx, rc)
		require.NoError(t, err)

		out := consumeOut.(sqstasks.ConsumeOutput)
		assert.Equal(t, int64(2), out.Count)

		rows, err := runner.LoadRows(out.URI)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
}
