package jira

import (
	"errors"
	"fmt"

	"github.com/flowmetrics/leadtime/internal/types"
)

// FetchError is returned for any transport, HTTP or decoding failure while
// talking to Jira. Fetches are never retried.
type FetchError struct {
	Op         string // "search" or "get issue"
	Target     string // JQL or issue key
	StartAt    int
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("jira: %s %q", e.Op, e.Target)
	if e.Op == opSearch {
		msg += fmt.Sprintf(" (startAt=%d)", e.StartAt)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	return msg + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError reports a response that does not match the expected shape.
// It is always wrapped in a FetchError.
type SchemaError struct {
	Key    string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("schema mismatch at %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("schema mismatch in %s at %s: %s", e.Key, e.Field, e.Reason)
}

// ChangelogTruncatedError is returned when an issue has more changelog
// entries than the embedded page carries.
type ChangelogTruncatedError struct {
	Key      string
	PageSize int
	Total    int
}

func (e *ChangelogTruncatedError) Error() string {
	return fmt.Sprintf("%s has more changelog events than can be processed (got %d event(s), but it has %d)",
		e.Key, e.PageSize, e.Total)
}

// CheckChangelog returns a ChangelogTruncatedError if issue's changelog is
// incomplete.
func CheckChangelog(issue types.Issue) error {
	if issue.ChangelogPageSize < issue.ChangelogTotal {
		return &ChangelogTruncatedError{
			Key:      issue.Key,
			PageSize: issue.ChangelogPageSize,
			Total:    issue.ChangelogTotal,
		}
	}
	return nil
}

// IsFetchError reports whether err is or wraps a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
