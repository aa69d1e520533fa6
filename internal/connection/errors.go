package connection

// ConfigError reports malformed connection configuration. It is returned
// before any network call is attempted.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid connection configuration: " + e.Reason
}
