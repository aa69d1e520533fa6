package tasks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flowstack-io/plugin-aws/internal/runner"
)

// ResolveFrom normalizes the "from" field shared by the publish tasks into a
// list of messages. Accepted shapes: a stored-file URI, a single inline
// value, or a list of values.
func ResolveFrom(rc *runner.RunContext, from any) ([]any, error) {
	switch v := from.(type) {
	case nil:
		return nil, fmt.Errorf("from is required")
	case string:
		rendered, err := rc.Render(v)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(rendered, "file://") {
			return runner.LoadRows(rendered)
		}
		return []any{rendered}, nil
	case []any:
		items := make([]any, 0, len(v))
		for _, item := range v {
			rendered, err := rc.RenderAny(item)
			if err != nil {
				return nil, err
			}
			items = append(items, rendered)
		}
		return items, nil
	default:
		rendered, err := rc.RenderAny(v)
		if err != nil {
			return nil, err
		}
		return []any{rendered}, nil
	}
}

// MessageBody renders a resolved message into its wire form: strings pass
// through, everything else is JSON encoded.
func MessageBody(message any) (string, error) {
	if s, ok := message.(string); ok {
		return s, nil
	}
	encoded, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}
	return string(encoded), nil
}
