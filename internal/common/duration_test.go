package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
	}{
		{name: "go syntax", input: "1h30m", expected: 90 * time.Minute},
		{name: "go millis", input: "500ms", expected: 500 * time.Millisecond},
		{name: "iso8601 minutes", input: "PT30M", expected: 30 * time.Minute},
		{name: "iso8601 mixed", input: "PT1H15M", expected: 75 * time.Minute},
		{name: "iso8601 seconds", input: "PT45S", expected: 45 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestParseDurationInvalid(t *testing.T) {
	_, err := ParseDuration("not-a-duration")
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "PT1H30M", FormatDuration(90*time.Minute))
	assert.Equal(t, "PT45S", FormatDuration(45*time.Second))
	assert.Equal(t, "PT0S", FormatDuration(0))
}
