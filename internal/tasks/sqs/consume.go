package sqs

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/flowstack-io/plugin-aws/internal/common"
	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Consume drains messages from a queue until maxRecords or maxDuration is
// reached; at least one bound must be set. Consumed messages are deleted
// from the queue and persisted to storage.
type Consume struct {
	connection.Connection `yaml:",inline"`

	QueueURL    string `yaml:"queueUrl"`
	MaxRecords  int    `yaml:"maxRecords,omitempty"`
	MaxDuration string `yaml:"maxDuration,omitempty"`
	SerdeType   string `yaml:"serdeType,omitempty"`
}

type ConsumeOutput struct {
	QueueURL string `json:"queueUrl"`
	URI      string `json:"uri"`
	Count    int64  `json:"count"`
}

func init() {
	tasks.Register("aws.sqs.consume", func() tasks.Task { return &Consume{} })
}

func (t *Consume) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	if t.MaxRecords <= 0 && t.MaxDuration == "" {
		return nil, fmt.Errorf("at least one of maxRecords or maxDuration must be set")
	}

	queueURL, err := rc.Render(t.QueueURL)
	if err != nil {
		return nil, err
	}
	serde, err := models.ParseSerdeType(t.SerdeType)
	if err != nil {
		return nil, err
	}

	var deadline time.Time
	if t.MaxDuration != "" {
		rendered, err := rc.Render(t.MaxDuration)
		if err != nil {
			return nil, err
		}
		d, err := common.ParseDuration(rendered)
		if err != nil {
			return nil, fmt.Errorf("invalid maxDuration %q: %w", rendered, err)
		}
		deadline = time.Now().Add(d)
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	var rows []any
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.MaxRecords > 0 && len(rows) >= t.MaxRecords {
			break
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			break
		}

		batch := int32(10)
		if t.MaxRecords > 0 {
			if remaining := t.MaxRecords - len(rows); remaining < 10 {
				batch = int32(remaining)
			}
		}
		resp, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: batch,
			WaitTimeSeconds:     1,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to receive messages from %s: %w", queueURL, err)
		}

		for _, msg := range resp.Messages {
			value, err := serde.Deserialize([]byte(aws.ToString(msg.Body)))
			if err != nil {
				return nil, err
			}
			rows = append(rows, value)
			if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(queueURL),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				return nil, fmt.Errorf("failed to delete consumed message: %w", err)
			}
		}
	}

	uri, count, err := runner.StoreRows(ctx, rc, rows)
	if err != nil {
		return nil, err
	}

	rc.Metric(models.Counter("records.count", float64(count)))
	return ConsumeOutput{QueueURL: queueURL, URI: uri, Count: count}, nil
}
