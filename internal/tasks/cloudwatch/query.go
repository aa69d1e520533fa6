package cloudwatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/flowstack-io/plugin-aws/internal/common"
	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/runner"
	"github.com/flowstack-io/plugin-aws/internal/tasks"
)

// Query reads aggregated metric statistics over a trailing window.
type Query struct {
	connection.Connection `yaml:",inline"`

	Namespace     string            `yaml:"namespace"`
	MetricName    string            `yaml:"metricName"`
	Dimensions    map[string]string `yaml:"dimensions,omitempty"`
	Statistic     string            `yaml:"statistic,omitempty"`
	PeriodSeconds int               `yaml:"periodSeconds,omitempty"`
	Window        string            `yaml:"window,omitempty"`
}

type Datapoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

type QueryOutput struct {
	Namespace  string      `json:"namespace"`
	MetricName string      `json:"metricName"`
	Statistic  string      `json:"statistic"`
	Datapoints []Datapoint `json:"datapoints"`
}

func init() {
	tasks.Register("aws.cloudwatch.query", func() tasks.Task { return &Query{} })
}

func (t *Query) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	namespace, err := rc.Render(t.Namespace)
	if err != nil {
		return nil, err
	}
	metricName, err := rc.Render(t.MetricName)
	if err != nil {
		return nil, err
	}

	statistic := t.Statistic
	if statistic == "" {
		statistic = "Average"
	}
	period := t.PeriodSeconds
	if period == 0 {
		period = 60
	}
	window := 5 * time.Minute
	if t.Window != "" {
		rendered, err := rc.Render(t.Window)
		if err != nil {
			return nil, err
		}
		window, err = common.ParseDuration(rendered)
		if err != nil {
			return nil, fmt.Errorf("invalid window %q: %w", rendered, err)
		}
	}

	input := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(namespace),
		MetricName: aws.String(metricName),
		StartTime:  aws.Time(time.Now().Add(-window)),
		EndTime:    aws.Time(time.Now()),
		Period:     aws.Int32(int32(period)),
		Statistics: []types.Statistic{types.Statistic(statistic)},
	}
	dimensions, err := rc.RenderStringMap(t.Dimensions)
	if err != nil {
		return nil, err
	}
	for k, v := range dimensions {
		input.Dimensions = append(input.Dimensions, types.Dimension{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}

	client, err := newClient(ctx, rc, t.Connection)
	if err != nil {
		return nil, err
	}

	resp, err := client.GetMetricStatistics(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric statistics: %w", err)
	}

	points := make([]Datapoint, 0, len(resp.Datapoints))
	for _, dp := range resp.Datapoints {
		points = append(points, Datapoint{
			Timestamp: aws.ToTime(dp.Timestamp),
			Value:     statisticValue(statistic, dp),
			Unit:      string(dp.Unit),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })

	return QueryOutput{
		Namespace:  namespace,
		MetricName: metricName,
		Statistic:  statistic,
		Datapoints: points,
	}, nil
}

func statisticValue(statistic string, dp types.Datapoint) float64 {
	switch statistic {
	case "Sum":
		return aws.ToFloat64(dp.Sum)
	case "Minimum":
		return aws.ToFloat64(dp.Minimum)
	case "Maximum":
		return aws.ToFloat64(dp.Maximum)
	case "SampleCount":
		return aws.ToFloat64(dp.SampleCount)
	default:
		return aws.ToFloat64(dp.Average)
	}
}
