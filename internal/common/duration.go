package common

import (
	"fmt"
	"strings"
	"time"

	iso8601 "github.com/senseyeio/duration"
)

// ParseDuration accepts either Go duration syntax ("90s", "1h30m") or an
// ISO 8601 duration ("PT15M", "P1D").
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed, nil
	}
	if isoDuration, err := iso8601.ParseISO8601(value); err == nil {
		referenceTime := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		shiftedTime := isoDuration.Shift(referenceTime)
		return shiftedTime.Sub(referenceTime), nil
	}

	return 0, fmt.Errorf("invalid duration format: %s. Expect ISO 8601 or duration string", value)
}

// FormatDuration formats a duration in ISO 8601 format (PT1H30M20S).
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}

	var result strings.Builder
	result.WriteString("PT")

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		result.WriteString(fmt.Sprintf("%dH", hours))
	}
	if minutes > 0 {
		result.WriteString(fmt.Sprintf("%dM", minutes))
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		result.WriteString(fmt.Sprintf("%dS", seconds))
	}

	return result.String()
}
