package jira

import (
	"encoding/json"
	"errors"
	"testing"
)

func decodeRaw(t *testing.T, s string) Issue {
	t.Helper()
	var ji Issue
	if err := json.Unmarshal([]byte(s), &ji); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return ji
}

func TestToIssue(t *testing.T) {
	ji := decodeRaw(t, `{
		"key": "PAY-12",
		"fields": {
			"summary": "Refund flow",
			"created": "2020-01-01T10:00:00.000+0200",
			"status": {"id": "10001", "name": "Done"},
			"customfield_10002": 3.5
		},
		"changelog": {
			"startAt": 0, "maxResults": 2, "total": 5,
			"histories": [
				{"id": "1", "created": "2020-01-02T10:00:00.000+0200", "items": [
					{"field": "status", "from": "1", "fromString": "Open", "to": "3", "toString": "In Progress"},
					{"field": "resolution", "from": null, "fromString": null, "to": "1", "toString": "Done"}
				]}
			]
		}
	}`)

	issue, err := ToIssue(ji, "customfield_10002", true)
	if err != nil {
		t.Fatalf("ToIssue error: %v", err)
	}
	if issue.Key != "PAY-12" || issue.Summary != "Refund flow" || issue.Status != "Done" {
		t.Errorf("issue = %+v", issue)
	}
	if issue.Created.UTC().Hour() != 8 {
		t.Errorf("Created = %v, want 08:00 UTC", issue.Created.UTC())
	}
	if issue.StoryPoints == nil || *issue.StoryPoints != 3.5 {
		t.Errorf("StoryPoints = %v, want 3.5", issue.StoryPoints)
	}
	if len(issue.Changelog) != 1 || len(issue.Changelog[0].Items) != 2 {
		t.Fatalf("changelog = %+v", issue.Changelog)
	}
	res := issue.Changelog[0].Items[1]
	if res.From != nil || res.FromString != "" || res.ToString != "Done" {
		t.Errorf("resolution item = %+v", res)
	}

	var trunc *ChangelogTruncatedError
	if err := CheckChangelog(issue); !errors.As(err, &trunc) {
		t.Fatalf("CheckChangelog = %v, want ChangelogTruncatedError", err)
	}
	if trunc.Key != "PAY-12" || trunc.PageSize != 2 || trunc.Total != 5 {
		t.Errorf("ChangelogTruncatedError = %+v", trunc)
	}
}

func TestToIssueSchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"missing key", `{"fields": {"created": "2020-01-01T00:00:00.000Z"}}`, "key"},
		{"missing fields", `{"key": "A-1"}`, "fields"},
		{"bad created", `{"key": "A-1", "fields": {"created": "yesterday"}}`, "fields.created"},
		{"summary not string", `{"key": "A-1", "fields": {"created": "2020-01-01T00:00:00.000Z", "summary": 7}}`, "fields.summary"},
		{"status not object", `{"key": "A-1", "fields": {"created": "2020-01-01T00:00:00.000Z", "status": "Open"}}`, "fields.status"},
		{"points not number", `{"key": "A-1", "fields": {"created": "2020-01-01T00:00:00.000Z", "sp": "three"}}`, "fields.sp"},
		{"bad history time", `{"key": "A-1", "fields": {"created": "2020-01-01T00:00:00.000Z"},
			"changelog": {"histories": [{"created": "", "items": []}]}}`, "changelog.histories[0].created"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToIssue(decodeRaw(t, tt.raw), "sp", false)
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want SchemaError", err)
			}
			if se.Field != tt.field {
				t.Errorf("Field = %q, want %q", se.Field, tt.field)
			}
		})
	}
}

func TestToIssueWithoutChangelog(t *testing.T) {
	raw := `{"key": "A-1", "fields": {"created": "2020-01-01T00:00:00.000Z", "status": {"name": "Done"}}}`

	// Not requested: a plain issue without history.
	issue, err := ToIssue(decodeRaw(t, raw), "", false)
	if err != nil {
		t.Fatalf("ToIssue error: %v", err)
	}
	if issue.Status != "Done" || issue.Changelog != nil || issue.StoryPoints != nil {
		t.Errorf("issue = %+v", issue)
	}

	// Requested but absent: the history was never fetched.
	_, err = ToIssue(decodeRaw(t, raw), "", true)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want SchemaError", err)
	}
	if se.Key != "A-1" || se.Field != "changelog" {
		t.Errorf("SchemaError = %+v", se)
	}
}
