package lambda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Invoke calls a Lambda function synchronously and persists the raw
// response payload to storage.
type Invoke struct {
	connection.Connection `yaml:",inline"`

	FunctionArn     string         `yaml:"functionArn"`
	FunctionPayload map[string]any `yaml:"functionPayload,omitempty"`
}

type InvokeOutput struct {
	FunctionArn   string `json:"functionArn"`
	StatusCode    int32  `json:"statusCode"`
	URI           string `json:"uri"`
	ContentLength int64  `json:"contentLength"`
}

func init() {
	tasks.Register("aws.lambda.invoke", func() tasks.Task { return &Invoke{} })
}

func (t *Invoke) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	functionArn, err := rc.Render(t.FunctionArn)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if t.FunctionPayload != nil {
		rendered, err := rc.RenderAny(t.FunctionPayload)
		if err != nil {
			return nil, err
		}
		payload, err = json.Marshal(rendered)
		if err != nil {
			return nil, fmt.Errorf("failed to encode function payload: %w", err)
		}
	}

	cfg, err := t.Connection.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := lambda.NewFromConfig(awsCfg)

	resp, err := client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(functionArn),
		Payload:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", functionArn, err)
	}
	if errName := aws.ToString(resp.FunctionError); errName != "" {
		return nil, fmt.Errorf("function %s failed with %s: %s", functionArn, errName, resp.Payload)
	}

	file, err := rc.TempFile(".json")
	if err != nil {
		return nil, err
	}
	if _, err := file.Write(resp.Payload); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write response payload: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, err
	}

	uri, err := rc.Storage().PutFile(ctx, file.Name())
	if err != nil {
		return nil, err
	}

	rc.Metric(models.Counter("file.size", float64(len(resp.Payload))))
	return InvokeOutput{
		FunctionArn:   functionArn,
		StatusCode:    resp.StatusCode,
		URI:           uri,
		ContentLength: int64(len(resp.Payload)),
	}, nil
}
