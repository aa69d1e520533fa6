package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// PutEvents publishes a batch of custom events onto an event bus.
type PutEvents struct {
	connection.Connection `yaml:",inline"`

	Entries                  []Entry `yaml:"entries"`
	FailOnUnsuccessfulEvents *bool   `yaml:"failOnUnsuccessfulEvents,omitempty"`
}

// Entry is one event; Detail may be an inline map or a templated JSON string.
type Entry struct {
	EventBusName string   `yaml:"eventBusName,omitempty"`
	Source       string   `yaml:"source"`
	DetailType   string   `yaml:"detailType"`
	Detail       any      `yaml:"detail"`
	Resources    []string `yaml:"resources,omitempty"`
}

type OutputEntry struct {
	Source       string `json:"source"`
	DetailType   string `json:"detailType"`
	EventID      string `json:"eventId,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

type PutEventsOutput struct {
	URI              string        `json:"uri"`
	Entries          []OutputEntry `json:"entries"`
	FailedEntryCount int32         `json:"failedEntryCount"`
}

func init() {
	tasks.Register("aws.eventbridge.putevents", func() tasks.Task { return &PutEvents{} })
}

func (t *PutEvents) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	if len(t.Entries) == 0 {
		return nil, fmt.Errorf("no entries to put")
	}

	requests := make([]types.PutEventsRequestEntry, 0, len(t.Entries))
	for _, e := range t.Entries {
		req, err := e.toRequest(rc)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	cfg, err := t.Connection.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := eventbridge.NewFromConfig(awsCfg)

	resp, err := client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: requests})
	if err != nil {
		return nil, fmt.Errorf("failed to put events: %w", err)
	}

	entries := make([]OutputEntry, len(resp.Entries))
	rows := make([]any, len(resp.Entries))
	for i, result := range resp.Entries {
		entries[i] = OutputEntry{
			Source:       aws.ToString(requests[i].Source),
			DetailType:   aws.ToString(requests[i].DetailType),
			EventID:      aws.ToString(result.EventId),
			ErrorCode:    aws.ToString(result.ErrorCode),
			ErrorMessage: aws.ToString(result.ErrorMessage),
		}
		rows[i] = entries[i]
	}

	failOn := t.FailOnUnsuccessfulEvents == nil || *t.FailOnUnsuccessfulEvents
	if failOn && resp.FailedEntryCount > 0 {
		return nil, fmt.Errorf("%d event entries failed to publish", resp.FailedEntryCount)
	}

	uri, _, err := runner.StoreRows(ctx, rc, rows)
	if err != nil {
		return nil, err
	}

	rc.Metric(models.Counter("events.count", float64(len(entries))))
	return PutEventsOutput{
		URI:              uri,
		Entries:          entries,
		FailedEntryCount: resp.FailedEntryCount,
	}, nil
}

func (e Entry) toRequest(rc *runner.RunContext) (types.PutEventsRequestEntry, error) {
	source, err := rc.Render(e.Source)
	if err != nil {
		return types.PutEventsRequestEntry{}, err
	}
	detailType, err := rc.Render(e.DetailType)
	if err != nil {
		return types.PutEventsRequestEntry{}, err
	}

	var detail string
	switch d := e.Detail.(type) {
	case string:
		detail, err = rc.Render(d)
		if err != nil {
			return types.PutEventsRequestEntry{}, err
		}
	default:
		rendered, err := rc.RenderAny(d)
		if err != nil {
			return types.PutEventsRequestEntry{}, err
		}
		encoded, err := json.Marshal(rendered)
		if err != nil {
			return types.PutEventsRequestEntry{}, fmt.Errorf("failed to encode event detail: %w", err)
		}
		detail = string(encoded)
	}

	req := types.PutEventsRequestEntry{
		Source:     aws.String(source),
		DetailType: aws.String(detailType),
		Detail:     aws.String(detail),
		Resources:  e.Resources,
	}
	if e.EventBusName != "" {
		bus, err := rc.Render(e.EventBusName)
		if err != nil {
			return types.PutEventsRequestEntry{}, err
		}
		req.EventBusName = aws.String(bus)
	}
	return req, nil
}
