package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
)

func newClient(ctx context.Context, rc *runner.RunContext, conn connection.Connection) (*dynamodb.Client, error) {
	cfg, err := conn.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(awsCfg), nil
}

func marshalAttributes(rc *runner.RunContext, value map[string]any) (map[string]types.AttributeValue, error) {
	rendered, err := rc.RenderAny(value)
	if err != nil {
		return nil, err
	}
	attrs, err := attributevalue.MarshalMap(rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attributes: %w", err)
	}
	return attrs, nil
}

func unmarshalItems(items []map[string]types.AttributeValue) ([]map[string]any, error) {
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		var row map[string]any
		if err := attributevalue.UnmarshalMap(item, &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FetchOutput is the fetchType-shaped result shared by Query and Scan.
type FetchOutput struct {
	Row  map[string]any   `json:"row,omitempty"`
	Rows []map[string]any `json:"rows,omitempty"`
	URI  string           `json:"uri,omitempty"`
	Size int64            `json:"size"`
}

func shapeOutput(ctx context.Context, rc *runner.RunContext, fetchType models.FetchType, rows []map[string]any) (FetchOutput, error) {
	out := FetchOutput{Size: int64(len(rows))}
	switch fetchType {
	case models.FetchTypeFetchOne:
		if len(rows) > 0 {
			out.Row = rows[0]
			out.Size = 1
		} else {
			out.Size = 0
		}
	case models.FetchTypeFetch:
		out.Rows = rows
	case models.FetchTypeStore:
		items := make([]any, len(rows))
		for i, r := range rows {
			items[i] = r
		}
		uri, count, err := runner.StoreRows(ctx, rc, items)
		if err != nil {
			return FetchOutput{}, err
		}
		out.URI = uri
		out.Size = count
	}
	return out, nil
}
