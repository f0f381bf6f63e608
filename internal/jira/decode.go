package jira

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/flowmetrics/leadtime/internal/types"
)

// ToIssue validates a raw Jira issue and converts it to the domain type.
// storyPointsField is the custom field id holding story points ("" to skip).
// When withChangelog is set the changelog was requested and must be present.
func ToIssue(ji Issue, storyPointsField string, withChangelog bool) (types.Issue, error) {
	if ji.Key == "" {
		return types.Issue{}, &SchemaError{Field: "key", Reason: "missing"}
	}
	if ji.Fields == nil {
		return types.Issue{}, &SchemaError{Key: ji.Key, Field: "fields", Reason: "missing"}
	}

	issue := types.Issue{Key: ji.Key}

	var created string
	if err := decodeField(ji.Fields, "created", &created); err != nil || created == "" {
		return types.Issue{}, &SchemaError{Key: ji.Key, Field: "fields.created", Reason: "missing or not a string"}
	}
	t, err := ParseTimestamp(created)
	if err != nil {
		return types.Issue{}, &SchemaError{Key: ji.Key, Field: "fields.created", Reason: err.Error()}
	}
	issue.Created = t

	if err := decodeField(ji.Fields, "summary", &issue.Summary); err != nil {
		return types.Issue{}, &SchemaError{Key: ji.Key, Field: "fields.summary", Reason: "not a string"}
	}

	var status *StatusField
	if err := decodeField(ji.Fields, "status", &status); err != nil {
		return types.Issue{}, &SchemaError{Key: ji.Key, Field: "fields.status", Reason: "not a status object"}
	}
	if status != nil {
		issue.Status = status.Name
	}

	if storyPointsField != "" {
		var points *float64
		if err := decodeField(ji.Fields, storyPointsField, &points); err != nil {
			return types.Issue{}, &SchemaError{Key: ji.Key, Field: "fields." + storyPointsField, Reason: "not a number"}
		}
		issue.StoryPoints = points
	}

	if ji.Changelog == nil && withChangelog {
		return types.Issue{}, &SchemaError{Key: ji.Key, Field: "changelog", Reason: "missing"}
	}
	if ji.Changelog != nil {
		events, err := toChangeEvents(ji.Key, ji.Changelog.Histories)
		if err != nil {
			return types.Issue{}, err
		}
		issue.Changelog = events
		issue.ChangelogPageSize = ji.Changelog.MaxResults
		issue.ChangelogTotal = ji.Changelog.Total
		// Some servers omit maxResults when the whole history fits.
		if issue.ChangelogPageSize == 0 && len(events) >= issue.ChangelogTotal {
			issue.ChangelogPageSize = len(events)
		}
	}

	return issue, nil
}

func toChangeEvents(key string, histories []History) ([]types.ChangeEvent, error) {
	events := make([]types.ChangeEvent, 0, len(histories))
	for i, h := range histories {
		created, err := ParseTimestamp(h.Created)
		if err != nil {
			return nil, &SchemaError{Key: key, Field: fmt.Sprintf("changelog.histories[%d].created", i), Reason: err.Error()}
		}
		items := make([]types.FieldChange, 0, len(h.Items))
		for _, it := range h.Items {
			items = append(items, types.FieldChange{
				Field:      it.Field,
				From:       it.From,
				To:         it.To,
				FromString: deref(it.FromString),
				ToString:   deref(it.ToString),
			})
		}
		events = append(events, types.ChangeEvent{Created: created, Items: items})
	}
	return events, nil
}

// decodeField unmarshals fields[name] into dst. Absent and null fields leave
// dst untouched.
func decodeField(fields map[string]json.RawMessage, name string, dst interface{}) error {
	raw, ok := fields[name]
	if !ok || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
