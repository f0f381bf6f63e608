package timeline

import (
	"fmt"
	"time"

	"github.com/flowmetrics/leadtime/internal/types"
)

// Policy selects how the completion timestamp is derived.
type Policy string

const (
	// PolicyClearOnReopen keeps the latest entry into a done status and
	// clears it whenever the issue leaves done again.
	PolicyClearOnReopen Policy = "clear-on-reopen"
	// PolicyTrailingRun looks only at transitions inside a time window and
	// reports the start of the trailing run of transitions into done.
	PolicyTrailingRun Policy = "trailing-run"
)

// ParsePolicy validates a policy name. The empty string selects the default.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyClearOnReopen:
		return PolicyClearOnReopen, nil
	case PolicyTrailingRun:
		return PolicyTrailingRun, nil
	}
	return "", fmt.Errorf("unknown completion policy %q (valid: %s, %s)", s, PolicyClearOnReopen, PolicyTrailingRun)
}

// Window bounds the trailing-run policy. Zero bounds are open.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies strictly inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && !t.After(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

// Classifier derives completion timestamps from status transitions.
type Classifier struct {
	Done   types.StatusSet
	Policy Policy
	Window Window
}

// Classify returns when the issue durably entered a done status, or nil.
func (c Classifier) Classify(transitions []types.StatusTransition) *time.Time {
	if c.Policy == PolicyTrailingRun {
		return TrailingRunCompletion(transitions, c.Done, c.Window)
	}
	return ClassifyCompletion(transitions, c.Done)
}

// ClassifyCompletion implements PolicyClearOnReopen. An issue whose last
// transition leaves it outside done always yields nil.
func ClassifyCompletion(transitions []types.StatusTransition, done types.StatusSet) *time.Time {
	var completed *time.Time
	for _, tr := range transitions {
		fromDone := done.Contains(tr.From)
		toDone := done.Contains(tr.To)
		switch {
		case toDone && !fromDone:
			at := tr.At
			completed = &at
		case fromDone && !toDone:
			completed = nil
		}
	}
	return completed
}

// TrailingRunCompletion implements PolicyTrailingRun. Only transitions inside
// w are considered. If the last of them ends in done, the result is the time
// of the earliest transition in the maximal trailing run of transitions that
// end in done.
func TrailingRunCompletion(transitions []types.StatusTransition, done types.StatusSet, w Window) *time.Time {
	inWindow := make([]types.StatusTransition, 0, len(transitions))
	for _, tr := range transitions {
		if w.Contains(tr.At) {
			inWindow = append(inWindow, tr)
		}
	}
	if len(inWindow) == 0 || !done.Contains(inWindow[len(inWindow)-1].To) {
		return nil
	}

	start := len(inWindow) - 1
	for start > 0 && done.Contains(inWindow[start-1].To) {
		start--
	}
	at := inWindow[start].At
	return &at
}
