package sqs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Publish sends one or more messages to a queue. From accepts an inline
// value, a list, or a file URI produced by a previous task.
type Publish struct {
	connection.Connection `yaml:",inline"`

	QueueURL     string `yaml:"queueUrl"`
	From         any    `yaml:"from"`
	DelaySeconds int32  `yaml:"delaySeconds,omitempty"`
}

type PublishOutput struct {
	QueueURL      string `json:"queueUrl"`
	MessagesCount int    `json:"messagesCount"`
}

func init() {
	tasks.Register("aws.sqs.publish", func() tasks.Task { return &Publish{} })
}

func (t *Publish) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	queueURL, err := rc.Render(t.QueueURL)
	if err != nil {
		return nil, err
	}
	messages, err := tasks.ResolveFrom(rc, t.From)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	for _, message := range messages {
		body, err := tasks.MessageBody(message)
		if err != nil {
			return nil, err
		}
		if _, err := client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:     aws.String(queueURL),
			MessageBody:  aws.String(body),
			DelaySeconds: t.DelaySeconds,
		}); err != nil {
			return nil, fmt.Errorf("failed to send message to %s: %w", queueURL, err)
		}
	}

	rc.Metric(models.Counter("messages.count", float64(len(messages))))
	return PublishOutput{QueueURL: queueURL, MessagesCount: len(messages)}, nil
}
