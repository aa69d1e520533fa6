package kinesis

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// PutRecords writes a batch of records to a stream in a single call.
type PutRecords struct {
	connection.Connection `yaml:",inline"`

	StreamName                string   `yaml:"streamName"`
	Records                   []Record `yaml:"records"`
	FailOnUnsuccessfulRecords *bool    `yaml:"failOnUnsuccessfulRecords,omitempty"`
}

type Record struct {
	Data            string `yaml:"data"`
	PartitionKey    string `yaml:"partitionKey"`
	ExplicitHashKey string `yaml:"explicitHashKey,omitempty"`
}

type OutputRecord struct {
	PartitionKey   string `json:"partitionKey"`
	SequenceNumber string `json:"sequenceNumber,omitempty"`
	ShardID        string `json:"shardId,omitempty"`
	ErrorCode      string `json:"errorCode,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
}

type PutRecordsOutput struct {
	StreamName         string `json:"streamName"`
	URI                string `json:"uri"`
	FailedRecordsCount int32  `json:"failedRecordsCount"`
}

func init() {
	tasks.Register("aws.kinesis.putrecords", func() tasks.Task { return &PutRecords{} })
}

func (t *PutRecords) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	streamName, err := rc.Render(t.StreamName)
	if err != nil {
		return nil, err
	}
	if len(t.Records) == 0 {
		return nil, fmt.Errorf("no records to put")
	}

	entries := make([]types.PutRecordsRequestEntry, 0, len(t.Records))
	keys := make([]string, 0, len(t.Records))
	for _, r := range t.Records {
		data, err := rc.Render(r.Data)
		if err != nil {
			return nil, err
		}
		partitionKey, err := rc.Render(r.PartitionKey)
		if err != nil {
			return nil, err
		}
		entry := types.PutRecordsRequestEntry{
			Data:         []byte(data),
			PartitionKey: aws.String(partitionKey),
		}
		if r.ExplicitHashKey != "" {
			entry.ExplicitHashKey = aws.String(r.ExplicitHashKey)
		}
		entries = append(entries, entry)
		keys = append(keys, partitionKey)
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	resp, err := client.PutRecords(ctx, &kinesis.PutRecordsInput{
		StreamName: aws.String(streamName),
		Records:    entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put records to %s: %w", streamName, err)
	}

	rows := make([]any, len(resp.Records))
	for i, result := range resp.Records {
		rows[i] = OutputRecord{
			PartitionKey:   keys[i],
			SequenceNumber: aws.ToString(result.SequenceNumber),
			ShardID:        aws.ToString(result.ShardId),
			ErrorCode:      aws.ToString(result.ErrorCode),
			ErrorMessage:   aws.ToString(result.ErrorMessage),
		}
	}

	failed := aws.ToInt32(resp.FailedRecordCount)
	failOn := t.FailOnUnsuccessfulRecords == nil || *t.FailOnUnsuccessfulRecords
	if failOn && failed > 0 {
		return nil, fmt.Errorf("%d records failed to publish", failed)
	}

	uri, count, err := runner.StoreRows(ctx, rc, rows)
	if err != nil {
		return nil, err
	}

	rc.Metric(models.Counter("records.count", float64(count)))
	return PutRecordsOutput{
		StreamName:         streamName,
		URI:                uri,
		FailedRecordsCount: failed,
	}, nil
}
