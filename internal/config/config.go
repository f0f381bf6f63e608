// Package config loads leadtime settings from flags, environment variables
// and an optional leadtime.yaml file through a viper singleton.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// It must be called once at startup, before any getter.
func Initialize() error {
	v = viper.New()

	v.SetConfigName("leadtime")
	v.AddConfigPath(".")
	v.AddConfigPath(".leadtime")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, "leadtime"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "leadtime"))
	}

	// LEADTIME_JIRA_PAGE_SIZE -> jira.page_size, LEADTIME_GUESS_DONE -> guess-done
	v.SetEnvPrefix("LEADTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// The usual Jira variables are honored without the prefix.
	_ = v.BindEnv("jira.url", "LEADTIME_JIRA_URL", "JIRA_URL")
	_ = v.BindEnv("jira.username", "LEADTIME_JIRA_USERNAME", "JIRA_USERNAME")
	_ = v.BindEnv("jira.api_token", "LEADTIME_JIRA_API_TOKEN", "JIRA_API_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("json", false)
	v.SetDefault("jira.url", "")
	v.SetDefault("jira.username", "")
	v.SetDefault("jira.api_token", "")
	v.SetDefault("jira.api_version", "2")
	v.SetDefault("jira.page_size", 0)
	v.SetDefault("jira.timeout", 30*time.Second)
	v.SetDefault("jira.story_points_field", "")
	v.SetDefault("statuses-file", "")
	v.SetDefault("completion.policy", "clear-on-reopen")
	v.SetDefault("completion.guess-done", false)
	v.SetDefault("report.show-summary", false)
	v.SetDefault("report.story-points", false)
	v.SetDefault("report.format", "csv")
	v.SetDefault("concurrency", 4)
	v.SetDefault("partial", false)
}

// ResetForTesting drops the singleton so the next Initialize starts clean.
func ResetForTesting() {
	v = nil
}

// ConfigFileUsed returns the path of the loaded config file, or "".
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration configuration value
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringSlice retrieves a string slice configuration value
func GetStringSlice(key string) []string {
	if v == nil {
		return []string{}
	}
	return v.GetStringSlice(key)
}

// Get retrieves a raw configuration value
func Get(key string) interface{} {
	if v == nil {
		return nil
	}
	return v.Get(key)
}

// IsSet reports whether key has a value from any source other than defaults.
func IsSet(key string) bool {
	if v == nil {
		return false
	}
	return v.IsSet(key)
}

// Set overrides a configuration value. Flags are applied this way.
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// AllSettings returns all configuration settings as a map
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}
