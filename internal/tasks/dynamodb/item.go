package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// PutItem writes a single item; Item may be an inline map or a templated
// JSON string.
type PutItem struct {
	connection.Connection `yaml:",inline"`

	TableName string `yaml:"tableName"`
	Item      any    `yaml:"item"`
}

type PutItemOutput struct {
	TableName string `json:"tableName"`
}

func init() {
	tasks.Register("aws.dynamodb.putitem", func() tasks.Task { return &PutItem{} })
	tasks.Register("aws.dynamodb.getitem", func() tasks.Task { return &GetItem{} })
	tasks.Register("aws.dynamodb.deleteitem", func() tasks.Task { return &DeleteItem{} })
}

func (t *PutItem) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	tableName, err := rc.Render(t.TableName)
	if err != nil {
		return nil, err
	}

	item, err := itemAsMap(rc, t.Item)
	if err != nil {
		return nil, err
	}
	attrs, err := marshalAttributes(rc, item)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	if _, err := client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      attrs,
	}); err != nil {
		return nil, fmt.Errorf("failed to put item into %s: %w", tableName, err)
	}

	return PutItemOutput{TableName: tableName}, nil
}

// GetItem reads a single item by primary key.
type GetItem struct {
	connection.Connection `yaml:",inline"`

	TableName string         `yaml:"tableName"`
	Key       map[string]any `yaml:"key"`
}

type GetItemOutput struct {
	TableName string         `json:"tableName"`
	Row       map[string]any `json:"row,omitempty"`
}

func (t *GetItem) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	tableName, err := rc.Render(t.TableName)
	if err != nil {
		return nil, err
	}
	key, err := marshalAttributes(rc, t.Key)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	resp, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from %s: %w", tableName, err)
	}

	out := GetItemOutput{TableName: tableName}
	if len(resp.Item) > 0 {
		rows, err := unmarshalItems([]map[string]types.AttributeValue{resp.Item})
		if err != nil {
			return nil, err
		}
		out.Row = rows[0]
	}
	return out, nil
}

// DeleteItem removes a single item by primary key.
type DeleteItem struct {
	connection.Connection `yaml:",inline"`

	TableName string         `yaml:"tableName"`
	Key       map[string]any `yaml:"key"`
}

type DeleteItemOutput struct {
	TableName string `json:"tableName"`
}

func (t *DeleteItem) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	tableName, err := rc.Render(t.TableName)
	if err != nil {
		return nil, err
	}
	key, err := marshalAttributes(rc, t.Key)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	if _, err := client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(tableName),
		Key:       key,
	}); err != nil {
		return nil, fmt.Errorf("failed to delete item from %s: %w", tableName, err)
	}

	return DeleteItemOutput{TableName: tableName}, nil
}

func itemAsMap(rc *runner.RunContext, item any) (map[string]any, error) {
	switch v := item.(type) {
	case map[string]any:
		return v, nil
	case string:
		rendered, err := rc.Render(v)
		if err != nil {
			return nil, err
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(rendered), &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode item JSON: %w", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("item must be a map or a JSON string")
	}
}
