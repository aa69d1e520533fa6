package interpolate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraverseString(t *testing.T) {
	t.Run("returns plain string as-is", func(t *testing.T) {
		result, err := Traverse("hello world", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "hello world", result)
	})

	t.Run("trims whitespace and newlines", func(t *testing.T) {
		result, err := Traverse("\n\t  hello  \n", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", result)
	})

	t.Run("evaluates expression against input", func(t *testing.T) {
		input := map[string]any{"bucket": "my-bucket"}
		result, err := Traverse("${ .bucket }", input, nil)
		require.NoError(t, err)
		assert.Equal(t, "my-bucket", result)
	})

	t.Run("evaluates nested path expression", func(t *testing.T) {
		input := map[string]any{
			"outputs": map[string]any{
				"upload": map[string]any{"key": "data/file.csv"},
			},
		}
		result, err := Traverse("${ .outputs.upload.key }", input, nil)
		require.NoError(t, err)
		assert.Equal(t, "data/file.csv", result)
	})

	t.Run("evaluates expression with variables", func(t *testing.T) {
		variables := map[string]any{"$region": "eu-west-1"}
		result, err := Traverse("${ $region }", nil, variables)
		require.NoError(t, err)
		assert.Equal(t, "eu-west-1", result)
	})
}

func TestTraverseCollections(t *testing.T) {
	t.Run("evaluates expressions inside task property maps", func(t *testing.T) {
		node := map[string]any{
			"queueUrl": "${ .queue }",
			"static":   "value",
			"entries": []any{
				map[string]any{"detail": "${ .detail }"},
			},
		}
		input := map[string]any{
			"queue":  "https://sqs.example/queue",
			"detail": "payload",
		}

		result, err := Traverse(node, input, nil)
		require.NoError(t, err)

		resultMap := result.(map[string]any)
		assert.Equal(t, "https://sqs.example/queue", resultMap["queueUrl"])
		assert.Equal(t, "value", resultMap["static"])

		entries := resultMap["entries"].([]any)
		entry := entries[0].(map[string]any)
		assert.Equal(t, "payload", entry["detail"])
	})

	t.Run("missing jq path yields nil, not an error", func(t *testing.T) {
		result, err := Traverse(map[string]any{"bad": "${ .does.not.exist }"}, map[string]any{}, nil)
		require.NoError(t, err)
		assert.Nil(t, result.(map[string]any)["bad"])
	})

	t.Run("returns scalars as-is", func(t *testing.T) {
		for _, value := range []any{42, 3.14, true, nil} {
			result, err := Traverse(value, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, value, result)
		}
	})
}

func TestEvaluateJQ(t *testing.T) {
	t.Run("arithmetic with input and variables", func(t *testing.T) {
		result, err := EvaluateJQ(".base + $offset", map[string]any{"base": 10}, map[string]any{"$offset": 5})
		require.NoError(t, err)
		assert.Equal(t, 15, result)
	})

	t.Run("pipe expression", func(t *testing.T) {
		input := map[string]any{"rows": []any{"a", "b"}}
		result, err := EvaluateJQ(".rows | length", input, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, result)
	})

	t.Run("invalid syntax reports a parse error", func(t *testing.T) {
		_, err := EvaluateJQ(".foo[", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse jq expression")
	})

	t.Run("undefined variable reports a compile error", func(t *testing.T) {
		_, err := EvaluateJQ("$undefined", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to compile jq expression")
	})
}

func TestIsExpr(t *testing.T) {
	assert.True(t, IsExpr("${ .bucket }"))
	assert.True(t, IsExpr("${.bucket}"))
	assert.False(t, IsExpr("plain"))
	assert.False(t, IsExpr("${ unterminated"))
	assert.Equal(t, ".bucket", SanitizeExpr("${ .bucket }"))
}
