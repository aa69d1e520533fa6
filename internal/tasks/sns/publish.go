package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Publish sends one or more messages to a topic. From accepts an inline
// value, a list, or a file URI produced by a previous task.
type Publish struct {
	connection.Connection `yaml:",inline"`

	TopicArn string `yaml:"topicArn"`
	From     any    `yaml:"from"`
	Subject  string `yaml:"subject,omitempty"`
}

type PublishOutput struct {
	TopicArn      string `json:"topicArn"`
	MessagesCount int    `json:"messagesCount"`
}

func init() {
	tasks.Register("aws.sns.publish", func() tasks.Task { return &Publish{} })
}

func (t *Publish) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	topicArn, err := rc.Render(t.TopicArn)
	if err != nil {
		return nil, err
	}
	messages, err := tasks.ResolveFrom(rc, t.From)
	if err != nil {
		return nil, err
	}

	cfg, err := t.Connection.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := sns.NewFromConfig(awsCfg)

	for _, message := range messages {
		body, err := tasks.MessageBody(message)
		if err != nil {
			return nil, err
		}
		input := &sns.PublishInput{
			TopicArn: aws.String(topicArn),
			Message:  aws.String(body),
		}
		if t.Subject != "" {
			subject, err := rc.Render(t.Subject)
			if err != nil {
				return nil, err
			}
			input.Subject = aws.String(subject)
		}
		if _, err := client.Publish(ctx, input); err != nil {
			return nil, fmt.Errorf("failed to publish to %s: %w", topicArn, err)
		}
	}

	rc.Metric(models.Counter("messages.count", float64(len(messages))))
	return PublishOutput{TopicArn: topicArn, MessagesCount: len(messages)}, nil
}
