package tasks

import (
	"fmt"
	"time"

	"github.com/flowstack-io/plugin-aws/internal/common"
	"github.com/flowstack-io/plugin-aws/internal/poller"
	"github.com/flowstack-io/plugin-aws/internal/runner"
)

// PollOptions renders the templated interval/maxDuration fields of a task and
// builds the poller options, falling back to fallbackInterval when the task
// does not set one.
func PollOptions(rc *runner.RunContext, interval, maxDuration string, maxIterations int, fallbackInterval time.Duration) (poller.Options, error) {
	opts := poller.Options{
		Interval:      fallbackInterval,
		MaxIterations: maxIterations,
	}

	if interval != "" {
		rendered, err := rc.Render(interval)
		if err != nil {
			return poller.Options{}, err
		}
		d, err := common.ParseDuration(rendered)
		if err != nil {
			return poller.Options{}, fmt.Errorf("invalid interval %q: %w", rendered, err)
		}
		opts.Interval = d
	}

	if maxDuration != "" {
		rendered, err := rc.Render(maxDuration)
		if err != nil {
			return poller.Options{}, err
		}
		d, err := common.ParseDuration(rendered)
		if err != nil {
			return poller.Options{}, fmt.Errorf("invalid maxDuration %q: %w", rendered, err)
		}
		opts.MaxDuration = d
	}

	return opts, nil
}
