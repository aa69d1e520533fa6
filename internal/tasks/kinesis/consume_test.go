package kinesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchLimit(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		expected  int32
	}{
		{name: "below cap", remaining: 500, expected: 500},
		{name: "at cap", remaining: 10000, expected: 10000},
		{name: "above cap", remaining: 50000, expected: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, batchLimit(tt.remaining))
		})
	}
}
