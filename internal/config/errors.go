package config

import "fmt"

// ConfigurationError reports an unusable setting. It is raised before any
// request is sent to Jira.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}
