package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmetrics/leadtime/internal/types"
)

func TestClassifyCompletionLastEntryWins(t *testing.T) {
	done := types.NewStatusSet("Done", "Closed")
	transitions := []types.StatusTransition{
		tr(t0.Add(1*day), "open", "done"),
		tr(t0.Add(2*day), "done", "open"),
		tr(t0.Add(3*day), "open", "done"),
		tr(t0.Add(4*day), "done", "closed"),
	}

	got := ClassifyCompletion(transitions, done)
	require.NotNil(t, got)
	assert.Equal(t, t0.Add(3*day), *got, "done -> closed must not move the completion time")

	again := ClassifyCompletion(transitions, done)
	require.NotNil(t, again)
	assert.Equal(t, *got, *again)
}

func TestClassifyCompletionCases(t *testing.T) {
	done := types.NewStatusSet("done")
	tests := []struct {
		name        string
		transitions []types.StatusTransition
		want        *time.Time
	}{
		{"empty", nil, nil},
		{"never done", []types.StatusTransition{tr(t0.Add(day), "open", "dev")}, nil},
		{"done", []types.StatusTransition{tr(t0.Add(day), "open", "done")}, timePtr(t0.Add(day))},
		{"reopened", []types.StatusTransition{
			tr(t0.Add(day), "open", "done"),
			tr(t0.Add(2*day), "done", "dev"),
		}, nil},
		{"case insensitive", []types.StatusTransition{tr(t0.Add(day), "open", "DONE")}, timePtr(t0.Add(day))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyCompletion(tt.transitions, done)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestTrailingRunCompletion(t *testing.T) {
	done := types.NewStatusSet("done", "released")
	transitions := []types.StatusTransition{
		tr(t0.Add(1*day), "open", "done"),
		tr(t0.Add(2*day), "done", "open"),
		tr(t0.Add(3*day), "open", "done"),
		tr(t0.Add(4*day), "done", "released"),
	}

	got := TrailingRunCompletion(transitions, done, Window{})
	require.NotNil(t, got)
	assert.Equal(t, t0.Add(3*day), *got)

	// Window that cuts the run: only the last transition is inside.
	got = TrailingRunCompletion(transitions, done, Window{From: t0.Add(3*day + time.Hour)})
	require.NotNil(t, got)
	assert.Equal(t, t0.Add(4*day), *got)

	// Window ending before re-entry: last transition in window leaves done.
	assert.Nil(t, TrailingRunCompletion(transitions, done, Window{To: t0.Add(3 * day)}))

	// Nothing in window.
	assert.Nil(t, TrailingRunCompletion(transitions, done, Window{From: t0.Add(10 * day)}))
}

func TestClassifierPolicies(t *testing.T) {
	done := types.NewStatusSet("done")
	transitions := []types.StatusTransition{
		tr(t0.Add(1*day), "open", "done"),
		tr(t0.Add(2*day), "done", "review"),
		tr(t0.Add(3*day), "review", "done"),
	}

	clear := Classifier{Done: done, Policy: PolicyClearOnReopen}
	c := clear.Classify(transitions)
	require.NotNil(t, c)
	assert.Equal(t, t0.Add(3*day), *c)

	// The window drops the re-entry, so the last transition inside it
	// leaves done.
	trailing := Classifier{Done: done, Policy: PolicyTrailingRun, Window: Window{To: t0.Add(2*day + time.Hour)}}
	assert.Nil(t, trailing.Classify(transitions))

	// The window drops the first entry; clear-on-reopen still sees it.
	trailing.Window = Window{From: t0.Add(day + time.Hour), To: t0.Add(2*day + time.Hour)}
	assert.Nil(t, trailing.Classify(transitions[:1]))
	c = clear.Classify(transitions[:1])
	require.NotNil(t, c)
	assert.Equal(t, t0.Add(day), *c)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyClearOnReopen, p)

	p, err = ParsePolicy("trailing-run")
	require.NoError(t, err)
	assert.Equal(t, PolicyTrailingRun, p)

	_, err = ParsePolicy("first-done")
	assert.Error(t, err)
}

func TestWindowContains(t *testing.T) {
	w := Window{From: t0, To: t0.Add(day)}
	assert.False(t, w.Contains(t0), "bounds are exclusive")
	assert.True(t, w.Contains(t0.Add(time.Hour)))
	assert.False(t, w.Contains(t0.Add(day)))
	assert.True(t, Window{}.Contains(t0))
}

func timePtr(t time.Time) *time.Time { return &t }
