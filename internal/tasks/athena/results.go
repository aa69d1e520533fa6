package athena

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
)

// fetchRows pages through GetQueryResults and converts each row into a map
// keyed by column name, with values coerced per the column metadata type.
func fetchRows(ctx context.Context, client *athena.Client, executionID string, skipHeader, firstOnly bool) ([]map[string]any, error) {
	var (
		rows    []map[string]any
		columns []types.ColumnInfo
		token   *string
		first   = true
	)

	for {
		resp, err := client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: aws.String(executionID),
			NextToken:        token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch query results: %w", err)
		}
		if resp.ResultSet == nil {
			return rows, nil
		}
		if columns == nil && resp.ResultSet.ResultSetMetadata != nil {
			columns = resp.ResultSet.ResultSetMetadata.ColumnInfo
		}

		data := resp.ResultSet.Rows
		if first && skipHeader && len(data) > 0 {
			data = data[1:]
		}
		first = false

		for _, row := range data {
			rows = append(rows, convertRow(columns, row))
			if firstOnly {
				return rows, nil
			}
		}

		token = resp.NextToken
		if token == nil {
			return rows, nil
		}
	}
}

func convertRow(columns []types.ColumnInfo, row types.Row) map[string]any {
	out := make(map[string]any, len(row.Data))
	for i, datum := range row.Data {
		name := strconv.Itoa(i)
		colType := ""
		if i < len(columns) {
			name = aws.ToString(columns[i].Name)
			colType = aws.ToString(columns[i].Type)
		}
		if datum.VarCharValue == nil {
			out[name] = nil
			continue
		}
		out[name] = coerce(colType, *datum.VarCharValue)
	}
	return out
}

// coerce maps an Athena varchar cell to a native value based on the declared
// column type; unparseable cells fall back to the raw string.
func coerce(colType, value string) any {
	switch colType {
	case "boolean":
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	case "tinyint", "smallint", "int", "integer", "bigint":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	case "double", "float", "decimal":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case "date":
		if d, err := time.Parse("2006-01-02", value); err == nil {
			return d
		}
	case "timestamp":
		if ts, err := time.Parse("2006-01-02 15:04:05.999999999", value); err == nil {
			return ts
		}
	}
	return value
}
