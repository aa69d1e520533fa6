package models

import "time"

// MetricKind distinguishes counters from timers.
type MetricKind string

const (
	MetricCounter MetricKind = "counter"
	MetricTimer   MetricKind = "timer"
)

// Metric is a single measurement emitted by a task adapter during a run,
// collected by the run context and reported to the host after completion.
type Metric struct {
	Name     string        `json:"name"`
	Kind     MetricKind    `json:"kind"`
	Value    float64       `json:"value,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Counter builds a counter metric.
func Counter(name string, value float64) Metric {
	return Metric{Name: name, Kind: MetricCounter, Value: value}
}

// Timer builds a timer metric.
func Timer(name string, duration time.Duration) Metric {
	return Metric{Name: name, Kind: MetricTimer, Duration: duration}
}
