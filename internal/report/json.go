package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/flowmetrics/leadtime/internal/leadtime"
)

type jsonStatus struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

type jsonIssue struct {
	Key           string           `json:"key"`
	Summary       string           `json:"summary,omitempty"`
	StoryPoints   *float64         `json:"story_points,omitempty"`
	Created       time.Time        `json:"created"`
	Finished      *time.Time       `json:"finished"`
	CurrentStatus string           `json:"current_status,omitempty"`
	Times         map[string]int64 `json:"times"`
}

type jsonReport struct {
	Statuses []jsonStatus       `json:"statuses"`
	Columns  []string           `json:"columns"`
	Issues   []jsonIssue        `json:"issues"`
	Failures []leadtime.Failure `json:"failures,omitempty"`
}

// WriteJSON writes rep as an indented JSON document. Times are keyed by
// column name and hold whole seconds.
func WriteJSON(w io.Writer, rep *leadtime.Report, opts Options) error {
	columns := Columns(rep, opts)

	out := jsonReport{
		Statuses: make([]jsonStatus, 0, len(rep.Statuses)),
		Columns:  columns,
		Issues:   make([]jsonIssue, 0, len(rep.Results)),
		Failures: rep.Failures,
	}
	for _, s := range rep.Statuses {
		out.Statuses = append(out.Statuses, jsonStatus{Name: s.Name, Done: s.Done})
	}
	for _, r := range rep.Results {
		issue := jsonIssue{
			Key:           r.Key,
			Created:       r.Created,
			Finished:      r.Completed,
			CurrentStatus: r.CurrentStatus,
			Times:         make(map[string]int64, len(columns)),
		}
		if opts.ShowSummary {
			issue.Summary = r.Summary
		}
		if opts.StoryPoints {
			issue.StoryPoints = r.StoryPoints
		}
		for _, c := range columns {
			issue.Times[c] = r.Times.Get(c)
		}
		out.Issues = append(out.Issues, issue)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
