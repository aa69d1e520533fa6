package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Query runs a key-condition query against a table or index.
type Query struct {
	connection.Connection `yaml:",inline"`

	TableName                 string         `yaml:"tableName"`
	KeyConditionExpression    string         `yaml:"keyConditionExpression"`
	ExpressionAttributeValues map[string]any `yaml:"expressionAttributeValues"`
	FilterExpression          string         `yaml:"filterExpression,omitempty"`
	Limit                     int            `yaml:"limit,omitempty"`
	FetchType                 string         `yaml:"fetchType,omitempty"`
}

type QueryOutput struct {
	TableName string `json:"tableName"`
	FetchOutput
}

func init() {
	tasks.Register("aws.dynamodb.query", func() tasks.Task { return &Query{} })
	tasks.Register("aws.dynamodb.scan", func() tasks.Task { return &Scan{} })
}

func (t *Query) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	fetchType, err := models.ParseFetchType(t.FetchType)
	if err != nil {
		return nil, err
	}
	tableName, err := rc.Render(t.TableName)
	if err != nil {
		return nil, err
	}
	keyCondition, err := rc.Render(t.KeyConditionExpression)
	if err != nil {
		return nil, err
	}
	values, err := marshalAttributes(rc, t.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(tableName),
		KeyConditionExpression:    aws.String(keyCondition),
		ExpressionAttributeValues: values,
	}
	if t.FilterExpression != "" {
		filter, err := rc.Render(t.FilterExpression)
		if err != nil {
			return nil, err
		}
		input.FilterExpression = aws.String(filter)
	}
	if t.Limit > 0 {
		input.Limit = aws.Int32(int32(t.Limit))
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	resp, err := client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	rows, err := unmarshalItems(resp.Items)
	if err != nil {
		return nil, err
	}

	shaped, err := shapeOutput(ctx, rc, fetchType, rows)
	if err != nil {
		return nil, err
	}
	rc.Metric(models.Counter("fetch.size", float64(len(rows))))
	return QueryOutput{TableName: tableName, FetchOutput: shaped}, nil
}

// Scan reads a whole table, optionally filtered.
type Scan struct {
	connection.Connection `yaml:",inline"`

	TableName                 string         `yaml:"tableName"`
	FilterExpression          string         `yaml:"filterExpression,omitempty"`
	ExpressionAttributeValues map[string]any `yaml:"expressionAttributeValues,omitempty"`
	Limit                     int            `yaml:"limit,omitempty"`
	FetchType                 string         `yaml:"fetchType,omitempty"`
}

type ScanOutput struct {
	TableName string `json:"tableName"`
	FetchOutput
}

func (t *Scan) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	fetchType, err := models.ParseFetchType(t.FetchType)
	if err != nil {
		return nil, err
	}
	tableName, err := rc.Render(t.TableName)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.ScanInput{
		TableName: aws.String(tableName),
	}
	if t.FilterExpression != "" {
		filter, err := rc.Render(t.FilterExpression)
		if err != nil {
			return nil, err
		}
		input.FilterExpression = aws.String(filter)
	}
	if len(t.ExpressionAttributeValues) > 0 {
		values, err := marshalAttributes(rc, t.ExpressionAttributeValues)
		if err != nil {
			return nil, err
		}
		input.ExpressionAttributeValues = values
	}
	if t.Limit > 0 {
		input.Limit = aws.Int32(int32(t.Limit))
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	resp, err := client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", tableName, err)
	}
	rows, err := unmarshalItems(resp.Items)
	if err != nil {
		return nil, err
	}

	shaped, err := shapeOutput(ctx, rc, fetchType, rows)
	if err != nil {
		return nil, err
	}
	rc.Metric(models.Counter("fetch.size", float64(len(rows))))
	return ScanOutput{TableName: tableName, FetchOutput: shaped}, nil
}
