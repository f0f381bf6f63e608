// Package jira provides a read-only Jira REST client that fetches issues
// with their changelogs and maps them onto leadtime's domain types.
package jira

import "encoding/json"

// Issue is a Jira issue as returned by the REST API. Fields are kept raw and
// decoded against a fixed schema by ToIssue.
type Issue struct {
	ID        string                     `json:"id"`
	Key       string                     `json:"key"`
	Self      string                     `json:"self"`
	Fields    map[string]json.RawMessage `json:"fields"`
	Changelog *Changelog                 `json:"changelog,omitempty"`
}

// StatusField represents a Jira issue status.
type StatusField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Changelog is the changelog page embedded by expand=changelog.
type Changelog struct {
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
	Histories  []History `json:"histories"`
}

// History is one changelog entry.
type History struct {
	ID      string        `json:"id"`
	Created string        `json:"created"`
	Items   []HistoryItem `json:"items"`
}

// HistoryItem is a single field change inside a History. From/To hold raw
// ids (status ids for the status field); FromString/ToString hold names.
type HistoryItem struct {
	Field      string  `json:"field"`
	FieldType  string  `json:"fieldtype"`
	From       *string `json:"from"`
	FromString *string `json:"fromString"`
	To         *string `json:"to"`
	ToString   *string `json:"toString"`
}

// SearchResult represents a Jira JQL search response.
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// Page describes one fetched search page. It is passed to progress hooks.
type Page struct {
	StartAt    int
	MaxResults int
	Total      int
	Count      int
}
