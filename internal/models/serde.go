package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FetchType controls how a task surfaces fetched rows or messages.
type FetchType string

const (
	// FetchTypeStore persists all rows to internal storage and outputs a URI.
	FetchTypeStore FetchType = "STORE"
	// FetchTypeFetch outputs all rows inline.
	FetchTypeFetch FetchType = "FETCH"
	// FetchTypeFetchOne outputs only the first row.
	FetchTypeFetchOne FetchType = "FETCH_ONE"
	// FetchTypeNone submits the operation without waiting for results.
	FetchTypeNone FetchType = "NONE"
)

// ParseFetchType validates a fetch type string, defaulting to STORE.
func ParseFetchType(value string) (FetchType, error) {
	if value == "" {
		return FetchTypeStore, nil
	}
	switch FetchType(strings.ToUpper(value)) {
	case FetchTypeStore:
		return FetchTypeStore, nil
	case FetchTypeFetch:
		return FetchTypeFetch, nil
	case FetchTypeFetchOne:
		return FetchTypeFetchOne, nil
	case FetchTypeNone:
		return FetchTypeNone, nil
	default:
		return "", fmt.Errorf("unknown fetchType: %s", value)
	}
}

// SerdeType controls how raw message payloads are decoded.
type SerdeType string

const (
	SerdeTypeString SerdeType = "STRING"
	SerdeTypeJSON   SerdeType = "JSON"
)

// ParseSerdeType validates a serde type string, defaulting to STRING.
func ParseSerdeType(value string) (SerdeType, error) {
	if value == "" {
		return SerdeTypeString, nil
	}
	switch SerdeType(strings.ToUpper(value)) {
	case SerdeTypeString:
		return SerdeTypeString, nil
	case SerdeTypeJSON:
		return SerdeTypeJSON, nil
	default:
		return "", fmt.Errorf("unknown serdeType: %s", value)
	}
}

// Deserialize decodes a raw payload according to the serde type.
func (s SerdeType) Deserialize(payload []byte) (any, error) {
	switch s {
	case SerdeTypeJSON:
		var decoded any
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode JSON payload: %w", err)
		}
		return decoded, nil
	default:
		return string(payload), nil
	}
}
