package models

import "strconv"

// BasicConfig is a loosely typed configuration map with typed accessors,
// used to hydrate runner settings and ad-hoc task variables.
type BasicConfig map[string]any

func (c BasicConfig) GetString(key string) (string, bool) {
	if value, ok := c[key]; ok {
		if s, ok := value.(string); ok {
			return s, true
		}
	}
	return "", false
}

func (c BasicConfig) GetStringWithDefault(key string, defaultValue string) string {
	if s, ok := c.GetString(key); ok {
		return s
	}
	return defaultValue
}

func (c BasicConfig) GetInt(key string) (int, bool) {
	switch value := c[key].(type) {
	case int:
		return value, true
	case int64:
		return int(value), true
	case float64:
		return int(value), true
	case string:
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func (c BasicConfig) GetIntWithDefault(key string, defaultValue int) int {
	if i, ok := c.GetInt(key); ok {
		return i
	}
	return defaultValue
}

func (c BasicConfig) GetBool(key string) (bool, bool) {
	switch value := c[key].(type) {
	case bool:
		return value, true
	case string:
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed, true
		}
	}
	return false, false
}

func (c BasicConfig) GetMap(key string) (map[string]any, bool) {
	if value, ok := c[key]; ok {
		if m, ok := value.(map[string]any); ok {
			return m, true
		}
	}
	return nil, false
}

func (c BasicConfig) AsMap() map[string]any {
	return map[string]any(c)
}
