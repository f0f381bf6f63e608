package jira

import (
	"fmt"
	"strings"
	"time"
)

// ParseTimestamp parses Jira's timestamp format into a time.Time.
// Jira uses ISO 8601 with timezone: 2024-01-15T10:30:00.000+0000 or 2024-01-15T10:30:00.000Z
func ParseTimestamp(ts string) (time.Time, error) {
	if ts == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	formats := []string{
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05Z",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, ts); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %s", ts)
}

// KeysQuery builds a JQL query selecting exactly the given issue keys.
func KeysQuery(keys []string) string {
	return fmt.Sprintf("key in (%s)", strings.Join(keys, ","))
}

// PeriodQuery builds the JQL used to find issues of a project updated in
// any way during [from, to]. types optionally restricts issue types.
func PeriodQuery(project string, issueTypes []string, from, to time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "project = %s and ", project)
	if len(issueTypes) > 0 {
		quoted := make([]string, len(issueTypes))
		for i, t := range issueTypes {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		fmt.Fprintf(&b, "type in (%s) and ", strings.Join(quoted, ","))
	}
	fmt.Fprintf(&b, "updatedDate >= %s and updatedDate <= %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	return b.String()
}
