package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTagging(t *testing.T) {
	assert.Empty(t, encodeTagging(nil))

	single := encodeTagging(map[string]string{"env": "prod"})
	assert.Equal(t, "env=prod", single)

	double := encodeTagging(map[string]string{"team": "data", "env": "prod"})
	assert.Equal(t, "env=prod&team=data", double)

	// Reserved characters in tag values must not break the pair encoding.
	escaped := encodeTagging(map[string]string{"query": "a=b&c", "owner": "team data"})
	assert.Equal(t, "owner=team+data&query=a%3Db%26c", escaped)
}

func TestBatchKeys(t *testing.T) {
	assert.Nil(t, batchKeys(nil, 2))

	objects := []ListedObject{
		{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}, {Key: "e"},
	}
	batches := batchKeys(objects, 2)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)
	assert.Equal(t, "e", *batches[2][0].Key)
}
