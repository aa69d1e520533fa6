package runner

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstack-io/plugin-aws/internal/models"
)

func newTestContext(t *testing.T, variables map[string]any) *RunContext {
	t.Helper()
	rc, err := NewRunContext(t.TempDir(), WithVariables(variables))
	require.NoError(t, err)
	return rc
}

func TestRender(t *testing.T) {
	rc := newTestContext(t, map[string]any{
		"bucket": "my-bucket",
		"limit":  10,
	})

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain string", input: "no expressions here", expected: "no expressions here"},
		{name: "full expression", input: "${ .bucket }", expected: "my-bucket"},
		{name: "non string result", input: "${ .limit }", expected: "10"},
		{name: "null renders empty", input: "${ .missing }", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered, err := rc.Render(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rendered)
		})
	}
}

func TestRenderStringMap(t *testing.T) {
	rc := newTestContext(t, map[string]any{"env": "prod"})

	rendered, err := rc.RenderStringMap(map[string]string{
		"stage": "${ .env }",
		"fixed": "value",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"stage": "prod", "fixed": "value"}, rendered)

	empty, err := rc.RenderStringMap(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestMetrics(t *testing.T) {
	rc := newTestContext(t, nil)

	rc.Metric(models.Counter("file.size", 1024))
	rc.Metric(models.Timer("total.duration", 2*time.Second))

	metrics := rc.Metrics()
	require.Len(t, metrics, 2)
	assert.Equal(t, "file.size", metrics[0].Name)
	assert.Equal(t, float64(1024), metrics[0].Value)
	assert.Equal(t, models.MetricTimer, metrics[1].Kind)
}

func TestStoreAndLoadRows(t *testing.T) {
	rc := newTestContext(t, nil)

	rows := []any{
		map[string]any{"id": "1", "name": "first"},
		map[string]any{"id": "2", "name": "second"},
	}

	uri, count, err := StoreRows(context.Background(), rc, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.True(t, strings.HasPrefix(uri, "file://"))

	loaded, err := LoadRows(uri)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, map[string]any{"id": "1", "name": "first"}, loaded[0])
}

func TestLocalStoragePutFile(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)

	source, err := os.CreateTemp(t.TempDir(), "*.txt")
	require.NoError(t, err)
	_, err = source.WriteString("hello")
	require.NoError(t, err)
	require.NoError(t, source.Close())

	uri, err := storage.PutFile(context.Background(), source.Name())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "file://"))
	assert.True(t, strings.HasSuffix(uri, ".txt"))

	content, err := os.ReadFile(strings.TrimPrefix(uri, "file://"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}
