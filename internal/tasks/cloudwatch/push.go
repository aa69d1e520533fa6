package cloudwatch

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/models"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Push publishes a batch of custom metric values into a namespace.
type Push struct {
	connection.Connection `yaml:",inline"`

	Namespace string        `yaml:"namespace"`
	Metrics   []MetricValue `yaml:"metrics"`
}

// MetricValue is a single datapoint; unit defaults to None and the timestamp
// to the time of submission.
type MetricValue struct {
	MetricName string            `yaml:"metricName"`
	Value      float64           `yaml:"value"`
	Unit       string            `yaml:"unit,omitempty"`
	Dimensions map[string]string `yaml:"dimensions,omitempty"`
}

type PushOutput struct {
	Namespace string `json:"namespace"`
	Count     int    `json:"count"`
}

func init() {
	tasks.Register("aws.cloudwatch.push", func() tasks.Task { return &Push{} })
}

func (t *Push) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	namespace, err := rc.Render(t.Namespace)
	if err != nil {
		return nil, err
	}
	if len(t.Metrics) == 0 {
		return nil, fmt.Errorf("no metrics to push")
	}

	now := time.Now()
	data := make([]types.MetricDatum, 0, len(t.Metrics))
	for _, m := range t.Metrics {
		name, err := rc.Render(m.MetricName)
		if err != nil {
			return nil, err
		}
		unit := types.StandardUnitNone
		if m.Unit != "" {
			unit = types.StandardUnit(m.Unit)
		}
		datum := types.MetricDatum{
			MetricName: aws.String(name),
			Value:      aws.Float64(m.Value),
			Unit:       unit,
			Timestamp:  aws.Time(now),
		}
		dimensions, err := rc.RenderStringMap(m.Dimensions)
		if err != nil {
			return nil, err
		}
		for k, v := range dimensions {
			datum.Dimensions = append(datum.Dimensions, types.Dimension{
				Name:  aws.String(k),
				Value: aws.String(v),
			})
		}
		data = append(data, datum)
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	if _, err := client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: data,
	}); err != nil {
		return nil, fmt.Errorf("failed to push metric data: %w", err)
	}

	rc.Metric(models.Counter("metrics.pushed", float64(len(data))))
	return PushOutput{Namespace: namespace, Count: len(data)}, nil
}
