package kinesis

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"

	"github.com/flowstack-io/plugin-aws/internal/common"
	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

const defaultConsumeMaxRecords = 1000

// GetRecords rejects Limit values above 10,000.
const getRecordsMaxLimit = 10000

// batchLimit caps a per-call record count at what GetRecords accepts.
func batchLimit(remaining int) int32 {
	if remaining > getRecordsMaxLimit {
		return getRecordsMaxLimit
	}
	return int32(remaining)
}

// Consume reads records from every shard of a stream until maxRecords or
// pollDuration is reached, whichever comes first.
type Consume struct {
	connection.Connection `yaml:",inline"`

	StreamName       string `yaml:"streamName"`
	StartingPosition string `yaml:"startingPosition,omitempty"`
	MaxRecords       int    `yaml:"maxRecords,omitempty"`
	PollDuration     string `yaml:"pollDuration,omitempty"`
}

type ConsumedRecord struct {
	ShardID        string    `json:"shardId"`
	SequenceNumber string    `json:"sequenceNumber"`
	PartitionKey   string    `json:"partitionKey"`
	Data           string    `json:"data"`
	ArrivedAt      time.Time `json:"arrivedAt"`
}

type ConsumeOutput struct {
	StreamName string `json:"streamName"`
	URI        string `json:"uri"`
	Count      int64  `json:"count"`
}

func init() {
	tasks.Register("aws.kinesis.consume", func() tasks.Task { return &Consume{} })
}

func (t *Consume) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	streamName, err := rc.Render(t.StreamName)
	if err != nil {
		return nil, err
	}

	maxRecords := t.MaxRecords
	if maxRecords <= 0 {
		maxRecords = defaultConsumeMaxRecords
	}
	pollDuration := 10 * time.Second
	if t.PollDuration != "" {
		rendered, err := rc.Render(t.PollDuration)
		if err != nil {
			return nil, err
		}
		pollDuration, err = common.ParseDuration(rendered)
		if err != nil {
			return nil, fmt.Errorf("invalid pollDuration %q: %w", rendered, err)
		}
	}
	position := types.ShardIteratorTypeTrimHorizon
	if t.StartingPosition != "" {
		position = types.ShardIteratorType(t.StartingPosition)
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	shards, err := client.ListShards(ctx, &kinesis.ListShardsInput{
		StreamName: aws.String(streamName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list shards for %s: %w", streamName, err)
	}

	deadline := time.Now().Add(pollDuration)
	var rows []any

shards:
	for _, shard := range shards.Shards {
		iterResp, err := client.GetShardIterator(ctx, &kinesis.GetShardIteratorInput{
			StreamName:        aws.String(streamName),
			ShardId:           shard.ShardId,
			ShardIteratorType: position,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get shard iterator: %w", err)
		}

		iterator := iterResp.ShardIterator
		for iterator != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if len(rows) >= maxRecords || !time.Now().Before(deadline) {
				break shards
			}

			resp, err := client.GetRecords(ctx, &kinesis.GetRecordsInput{
				ShardIterator: iterator,
				Limit:         aws.Int32(batchLimit(maxRecords - len(rows))),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to get records: %w", err)
			}
			for _, record := range resp.Records {
				rows = append(rows, ConsumedRecord{
					ShardID:        aws.ToString(shard.ShardId),
					SequenceNumber: aws.ToString(record.SequenceNumber),
					PartitionKey:   aws.ToString(record.PartitionKey),
					Data:           string(record.Data),
					ArrivedAt:      aws.ToTime(record.ApproximateArrivalTimestamp),
				})
			}

			// a nil NextShardIterator means the shard is closed and drained
			iterator = resp.NextShardIterator
			if len(resp.Records) == 0 && aws.ToInt64(resp.MillisBehindLatest) == 0 {
				break
			}
		}
	}

	uri, count, err := runner.StoreRows(ctx, rc, rows)
	if err != nil {
		return nil, err
	}

	rc.Metric(models.Counter("records.count", float64(count)))
	return ConsumeOutput{StreamName: streamName, URI: uri, Count: count}, nil
}
