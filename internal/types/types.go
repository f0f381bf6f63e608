// Package types defines the core data structures for leadtime reports.
package types

import (
	"sort"
	"strings"
	"time"
)

// StatusField is the changelog field name that records workflow transitions.
const StatusField = "status"

// Issue is a tracker issue together with its change history.
// Issues are immutable once fetched.
type Issue struct {
	Key         string        `json:"key"`
	Summary     string        `json:"summary"`
	Created     time.Time     `json:"created"`
	Status      string        `json:"status,omitempty"` // current status name, empty when unknown
	StoryPoints *float64      `json:"story_points,omitempty"`
	Changelog   []ChangeEvent `json:"changelog,omitempty"`

	// Size of the embedded changelog page as reported by the tracker.
	// ChangelogPageSize < ChangelogTotal means the history was truncated.
	ChangelogPageSize int `json:"-"`
	ChangelogTotal    int `json:"-"`
}

// ChangeEvent is one atomic update to an issue. A single event may touch
// several fields at once.
type ChangeEvent struct {
	Created time.Time     `json:"created"`
	Items   []FieldChange `json:"items"`
}

// FieldChange is a single field edit inside a ChangeEvent.
// From and To carry the raw identifiers (nil when the tracker sent null);
// FromString and ToString carry the display names.
type FieldChange struct {
	Field      string  `json:"field"`
	From       *string `json:"from"`
	To         *string `json:"to"`
	FromString string  `json:"fromString"`
	ToString   string  `json:"toString"`
}

// StatusTransition is a normalized status change. From and To are lowercased
// for identity comparisons; the display variants keep the original casing.
type StatusTransition struct {
	At          time.Time `json:"at"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	FromDisplay string    `json:"from_display"`
	ToDisplay   string    `json:"to_display"`
}

// Durations accumulates whole seconds spent per status (lowercase names).
// Repeated visits to the same status are summed.
type Durations map[string]int64

// Add accrues seconds to status. Names are matched case-insensitively.
func (d Durations) Add(status string, seconds int64) {
	d[NormalizeStatus(status)] += seconds
}

// Get returns the accumulated seconds for status, 0 if it was never occupied.
func (d Durations) Get(status string) int64 {
	return d[NormalizeStatus(status)]
}

// Total returns the sum of all durations.
func (d Durations) Total() int64 {
	var total int64
	for _, s := range d {
		total += s
	}
	return total
}

// Statuses returns the status names present, sorted alphabetically.
func (d Durations) Statuses() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TimingResult is the per-issue output of a leadtime run.
type TimingResult struct {
	Key           string     `json:"key"`
	Summary       string     `json:"summary"`
	StoryPoints   *float64   `json:"story_points,omitempty"`
	Created       time.Time  `json:"created"`
	Completed     *time.Time `json:"completed,omitempty"`
	CurrentStatus string     `json:"current_status,omitempty"`
	Times         Durations  `json:"times"`
}

// NormalizeStatus returns the identity form of a status name.
func NormalizeStatus(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
