package config

import "time"

// JiraSettings holds the connection settings for the Jira client.
type JiraSettings struct {
	URL              string
	Username         string
	APIToken         string
	APIVersion       string
	PageSize         int
	Timeout          time.Duration
	StoryPointsField string
}

// Jira returns the effective Jira settings.
func Jira() JiraSettings {
	return JiraSettings{
		URL:              GetString("jira.url"),
		Username:         GetString("jira.username"),
		APIToken:         GetString("jira.api_token"),
		APIVersion:       GetString("jira.api_version"),
		PageSize:         GetInt("jira.page_size"),
		Timeout:          GetDuration("jira.timeout"),
		StoryPointsField: GetString("jira.story_points_field"),
	}
}

// Validate checks that the settings are sufficient to talk to Jira.
func (s JiraSettings) Validate() error {
	switch {
	case s.URL == "":
		return &ConfigurationError{Key: "jira.url", Reason: "not set (use JIRA_URL or leadtime.yaml)"}
	case s.APIToken == "":
		return &ConfigurationError{Key: "jira.api_token", Reason: "not set (use JIRA_API_TOKEN or leadtime.yaml)"}
	case s.APIVersion != "2" && s.APIVersion != "3":
		return &ConfigurationError{Key: "jira.api_version", Reason: "must be 2 or 3, got " + s.APIVersion}
	case s.PageSize < 0:
		return &ConfigurationError{Key: "jira.page_size", Reason: "must not be negative"}
	}
	return nil
}

// Redacted returns all settings with secrets masked, for display.
func Redacted() map[string]interface{} {
	settings := AllSettings()
	if jira, ok := settings["jira"].(map[string]interface{}); ok {
		if tok, ok := jira["api_token"].(string); ok && tok != "" {
			jira["api_token"] = MaskSecret(tok)
		}
	}
	return settings
}

// MaskSecret hides all but the last four characters of s.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
