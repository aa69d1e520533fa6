package athena

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstack-io/plugin-aws/internal/poller"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name     string
		colType  string
		value    string
		expected any
	}{
		{name: "boolean", colType: "boolean", value: "true", expected: true},
		{name: "integer", colType: "integer", value: "42", expected: int64(42)},
		{name: "bigint", colType: "bigint", value: "9000000000", expected: int64(9000000000)},
		{name: "double", colType: "double", value: "3.14", expected: 3.14},
		{name: "decimal", colType: "decimal", value: "10.5", expected: 10.5},
		{name: "varchar stays string", colType: "varchar", value: "hello", expected: "hello"},
		{name: "unparseable falls back", colType: "integer", value: "abc", expected: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coerce(tt.colType, tt.value))
		})
	}
}

func TestCoerceTemporal(t *testing.T) {
	date, ok := coerce("date", "2024-03-01").(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2024, date.Year())

	ts, ok := coerce("timestamp", "2024-03-01 12:30:45.123").(time.Time)
	require.True(t, ok)
	assert.Equal(t, 30, ts.Minute())
}

func TestConvertRow(t *testing.T) {
	columns := []types.ColumnInfo{
		{Name: aws.String("id"), Type: aws.String("integer")},
		{Name: aws.String("name"), Type: aws.String("varchar")},
	}
	row := types.Row{Data: []types.Datum{
		{VarCharValue: aws.String("7")},
		{VarCharValue: nil},
	}}

	converted := convertRow(columns, row)
	assert.Equal(t, int64(7), converted["id"])
	assert.Nil(t, converted["name"])
}

func TestQueryStateClassification(t *testing.T) {
	assert.Equal(t, poller.StatusPending, queryStates.Classify("QUEUED", "").Status)
	assert.Equal(t, poller.StatusRunning, queryStates.Classify("RUNNING", "").Status)
	assert.Equal(t, poller.StatusSucceeded, queryStates.Classify("SUCCEEDED", "").Status)

	failed := queryStates.Classify("FAILED", "SYNTAX_ERROR: line 1")
	assert.Equal(t, poller.StatusFailed, failed.Status)
	assert.Equal(t, "SYNTAX_ERROR: line 1", failed.Reason)

	assert.Equal(t, poller.StatusCancelled, queryStates.Classify("CANCELLED", "").Status)
	assert.Equal(t, poller.StatusUnknown, queryStates.Classify("SOMETHING_NEW", "").Status)
}
