package timeline

import (
	"time"

	"github.com/flowmetrics/leadtime/internal/types"
)

// InitialStatusFunc supplies the status of an issue that has no recorded
// transitions. It returns "" when the status is unknown.
type InitialStatusFunc func() string

// CurrentStatusOf is an InitialStatusFunc backed by the issue's current
// status field.
func CurrentStatusOf(issue types.Issue) InitialStatusFunc {
	return func() string { return issue.Status }
}

// Timeline is the reconstructed status history of one issue.
type Timeline struct {
	// Initial is the status occupied from creation until the first
	// transition ("" when unknown).
	Initial string
	// Intervals holds cumulative whole seconds per status, including the
	// open-ended span from the last transition until now.
	Intervals types.Durations
	// Current is the status occupied at now ("" when unknown).
	Current string
	// CurrentSince is when Current was entered.
	CurrentSince time.Time
}

// Reconstruct walks transitions (already in chronological order) and
// accumulates the time spent in every status between created and now.
//
// With no transitions the interval set is empty and the current status comes
// from initial, which may be nil.
func Reconstruct(created time.Time, transitions []types.StatusTransition, now time.Time, initial InitialStatusFunc) (Timeline, error) {
	tl := Timeline{
		Intervals:    types.Durations{},
		CurrentSince: created,
	}

	if len(transitions) == 0 {
		if initial != nil {
			status := types.NormalizeStatus(initial())
			tl.Initial = status
			tl.Current = status
		}
		return tl, nil
	}

	tl.Initial = transitions[0].From
	prevStatus := transitions[0].From
	prevStart := created

	for _, tr := range transitions {
		if err := accrue(tl.Intervals, prevStatus, prevStart, tr.At); err != nil {
			return Timeline{}, err
		}
		prevStatus = tr.To
		prevStart = tr.At
	}

	if err := accrue(tl.Intervals, prevStatus, prevStart, now); err != nil {
		return Timeline{}, err
	}

	tl.Current = prevStatus
	tl.CurrentSince = prevStart
	return tl, nil
}

// accrue adds end-start (whole seconds) to status. Seconds are taken from
// the truncated Unix times so that consecutive spans telescope exactly.
func accrue(d types.Durations, status string, start, end time.Time) error {
	if end.Before(start) {
		return &DataIntegrityError{Status: status, Start: start, End: end}
	}
	d.Add(status, end.Unix()-start.Unix())
	return nil
}
