package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// StoreRows serializes rows as newline-delimited JSON into a temp file and
// moves it to storage, returning the stored URI and the row count. Used by
// tasks whose result sets are too large for the output record.
func StoreRows(ctx context.Context, r *RunContext, rows []any) (string, int64, error) {
	file, err := r.TempFile(".ndjson")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return "", 0, fmt.Errorf("failed to serialize row: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return "", 0, err
	}
	if err := file.Close(); err != nil {
		return "", 0, err
	}

	uri, err := r.storage.PutFile(ctx, file.Name())
	if err != nil {
		return "", 0, err
	}
	return uri, int64(len(rows)), nil
}

// LoadRows reads back a newline-delimited JSON file previously produced by
// StoreRows (or any file:// URI pointing at NDJSON content).
func LoadRows(uri string) ([]any, error) {
	path := strings.TrimPrefix(uri, "file://")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stored rows %s: %w", uri, err)
	}
	defer file.Close()

	var rows []any
	decoder := json.NewDecoder(bufio.NewReader(file))
	for decoder.More() {
		var row any
		if err := decoder.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode stored row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
