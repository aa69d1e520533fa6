package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstack-io/plugin-aws/internal/poller"
	"github.com/flowstack-io/plugin-aws/internal/runner"
)

type fakeTask struct{ name string }

func (f *fakeTask) Run(ctx context.Context, rc *runner.RunContext) (any, error) {
	return f.name, nil
}

func TestRegistry(t *testing.T) {
	Register("aws.test.fake", func() Task { return &fakeTask{name: "first"} })
	// duplicate registrations keep the first factory
	Register("AWS.Test.Fake", func() Task { return &fakeTask{name: "second"} })

	task, err := Create("AWS.TEST.FAKE")
	require.NoError(t, err)
	assert.Equal(t, "first", task.(*fakeTask).name)

	_, err = Create("aws.test.unknown")
	assert.Error(t, err)

	assert.Contains(t, Types(), "aws.test.fake")
}

func TestCreateReturnsFreshInstances(t *testing.T) {
	Register("aws.test.fresh", func() Task { return &fakeTask{} })

	first, err := Create("aws.test.fresh")
	require.NoError(t, err)
	second, err := Create("aws.test.fresh")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestPollOptions(t *testing.T) {
	rc, err := runner.NewRunContext(t.TempDir(), runner.WithVariables(map[string]any{
		"interval": "2s",
	}))
	require.NoError(t, err)

	t.Run("defaults", func(t *testing.T) {
		opts, err := PollOptions(rc, "", "", 0, poller.DefaultInterval)
		require.NoError(t, err)
		assert.Equal(t, poller.DefaultInterval, opts.Interval)
		assert.Zero(t, opts.MaxDuration)
		assert.Zero(t, opts.MaxIterations)
	})

	t.Run("templated interval", func(t *testing.T) {
		opts, err := PollOptions(rc, "${ .interval }", "PT1M", 5, poller.DefaultInterval)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, opts.Interval)
		assert.Equal(t, time.Minute, opts.MaxDuration)
		assert.Equal(t, 5, opts.MaxIterations)
	})

	t.Run("invalid interval", func(t *testing.T) {
		_, err := PollOptions(rc, "bogus", "", 0, poller.DefaultInterval)
		assert.Error(t, err)
	})
}

func TestResolveFrom(t *testing.T) {
	rc, err := runner.NewRunContext(t.TempDir(), runner.WithVariables(map[string]any{
		"message": "hello",
	}))
	require.NoError(t, err)

	t.Run("single string", func(t *testing.T) {
		messages, err := ResolveFrom(rc, "${ .message }")
		require.NoError(t, err)
		assert.Equal(t, []any{"hello"}, messages)
	})

	t.Run("list", func(t *testing.T) {
		messages, err := ResolveFrom(rc, []any{"one", map[string]any{"data": "two"}})
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "one", messages[0])
	})

	t.Run("stored file uri", func(t *testing.T) {
		uri, _, err := runner.StoreRows(context.Background(), rc, []any{
			map[string]any{"data": "a"},
			map[string]any{"data": "b"},
		})
		require.NoError(t, err)

		messages, err := ResolveFrom(rc, uri)
		require.NoError(t, err)
		assert.Len(t, messages, 2)
	})

	t.Run("nil", func(t *testing.T) {
		_, err := ResolveFrom(rc, nil)
		assert.Error(t, err)
	})
}

func TestMessageBody(t *testing.T) {
	body, err := MessageBody("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", body)

	body, err = MessageBody(map[string]any{"key": "value"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"value"}`, body)
}
