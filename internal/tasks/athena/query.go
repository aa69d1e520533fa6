package athena

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/poller"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

var queryStates = poller.NewClassifier(map[string]poller.Status{
	"QUEUED":    poller.StatusPending,
	"RUNNING":   poller.StatusRunning,
	"SUCCEEDED": poller.StatusSucceeded,
	"FAILED":    poller.StatusFailed,
	"CANCELLED": poller.StatusCancelled,
})

// Query submits a query to Athena and, unless fetchType is NONE, waits for it
// to reach a terminal state and collects its results.
type Query struct {
	connection.Connection `yaml:",inline"`

	Database       string `yaml:"database"`
	Catalog        string `yaml:"catalog,omitempty"`
	WorkGroup      string `yaml:"workGroup,omitempty"`
	OutputLocation string `yaml:"outputLocation,omitempty"`
	Query          string `yaml:"query"`
	FetchType      string `yaml:"fetchType,omitempty"`
	SkipHeader     *bool  `yaml:"skipHeader,omitempty"`
	Interval       string `yaml:"interval,omitempty"`
	MaxDuration    string `yaml:"maxDuration,omitempty"`
	MaxIterations  int    `yaml:"maxIterations,omitempty"`
}

type QueryOutput struct {
	QueryExecutionID string           `json:"queryExecutionId"`
	State            string           `json:"state,omitempty"`
	Row              map[string]any   `json:"row,omitempty"`
	Rows             []map[string]any `json:"rows,omitempty"`
	URI              string           `json:"uri,omitempty"`
	Size             int64            `json:"size,omitempty"`
}

func init() {
	tasks.Register("aws.athena.query", func() tasks.Task { return &Query{} })
}

func (t *Query) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	fetchType, err := models.ParseFetchType(t.FetchType)
	if err != nil {
		return nil, err
	}

	query, err := rc.Render(t.Query)
	if err != nil {
		return nil, err
	}
	database, err := rc.Render(t.Database)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	input := &athena.StartQueryExecutionInput{
		QueryString: aws.String(query),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(database),
		},
	}
	if t.Catalog != "" {
		catalog, err := rc.Render(t.Catalog)
		if err != nil {
			return nil, err
		}
		input.QueryExecutionContext.Catalog = aws.String(catalog)
	}
	if t.WorkGroup != "" {
		workGroup, err := rc.Render(t.WorkGroup)
		if err != nil {
			return nil, err
		}
		input.WorkGroup = aws.String(workGroup)
	}
	if t.OutputLocation != "" {
		outputLocation, err := rc.Render(t.OutputLocation)
		if err != nil {
			return nil, err
		}
		input.ResultConfiguration = &types.ResultConfiguration{
			OutputLocation: aws.String(outputLocation),
		}
	}

	started, err := client.StartQueryExecution(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to start query execution: %w", err)
	}
	executionID := aws.ToString(started.QueryExecutionId)
	rc.Logger().WithField("queryExecutionId", executionID).Debug("Query submitted")

	if fetchType == models.FetchTypeNone {
		return QueryOutput{QueryExecutionID: executionID}, nil
	}

	opts, err := tasks.PollOptions(rc, t.Interval, t.MaxDuration, t.MaxIterations, poller.DefaultInterval)
	if err != nil {
		return nil, err
	}

	var execution *types.QueryExecution
	final, err := poller.WaitTerminal(ctx, func(ctx context.Context) (poller.State, error) {
		resp, err := client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(executionID),
		})
		if err != nil {
			return poller.State{}, err
		}
		execution = resp.QueryExecution
		status := resp.QueryExecution.Status
		reason := ""
		if status.StateChangeReason != nil {
			reason = *status.StateChangeReason
		}
		return queryStates.Classify(string(status.State), reason), nil
	}, opts)
	if execution != nil && execution.Statistics != nil {
		emitStatistics(rc, execution.Statistics)
	}
	if err != nil {
		return nil, err
	}

	out := QueryOutput{QueryExecutionID: executionID, State: final.Raw}

	skipHeader := true
	if t.SkipHeader != nil {
		skipHeader = *t.SkipHeader
	}

	rows, err := fetchRows(ctx, client, executionID, skipHeader, fetchType == models.FetchTypeFetchOne)
	if err != nil {
		return nil, err
	}

	switch fetchType {
	case models.FetchTypeFetchOne:
		if len(rows) > 0 {
			out.Row = rows[0]
			out.Size = 1
		}
	case models.FetchTypeFetch:
		out.Rows = rows
		out.Size = int64(len(rows))
	case models.FetchTypeStore:
		items := make([]any, len(rows))
		for i, r := range rows {
			items[i] = r
		}
		uri, count, err := runner.StoreRows(ctx, rc, items)
		if err != nil {
			return nil, err
		}
		out.URI = uri
		out.Size = count
	}

	rc.Metric(models.Counter("fetch.size", float64(len(rows))))
	return out, nil
}

func emitStatistics(rc *runner.RunContext, stats *types.QueryExecutionStatistics) {
	if stats.DataScannedInBytes != nil {
		rc.Metric(models.Counter("data.scanned.bytes", float64(*stats.DataScannedInBytes)))
	}
	if stats.EngineExecutionTimeInMillis != nil {
		rc.Metric(models.Timer("engine.execution.duration", time.Duration(*stats.EngineExecutionTimeInMillis)*time.Millisecond))
	}
	if stats.QueryQueueTimeInMillis != nil {
		rc.Metric(models.Timer("query.queue.duration", time.Duration(*stats.QueryQueueTimeInMillis)*time.Millisecond))
	}
	if stats.TotalExecutionTimeInMillis != nil {
		rc.Metric(models.Timer("total.execution.duration", time.Duration(*stats.TotalExecutionTimeInMillis)*time.Millisecond))
	}
	if stats.ServiceProcessingTimeInMillis != nil {
		rc.Metric(models.Timer("service.processing.duration", time.Duration(*stats.ServiceProcessingTimeInMillis)*time.Millisecond))
	}
}
