package types

import "strings"

// Status is a configured workflow status. The configured order is the
// column order of the report.
type Status struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Done bool   `json:"done,omitempty" yaml:"done,omitempty" toml:"done"`
}

// ParseStatus parses the legacy string form of a status, where a '*'
// anywhere in the name marks it as done (e.g. "*Done").
func ParseStatus(s string) Status {
	done := strings.Contains(s, "*")
	return Status{
		Name: strings.TrimSpace(strings.ReplaceAll(s, "*", "")),
		Done: done,
	}
}

// StatusNames returns the display names of statuses in order.
func StatusNames(statuses []Status) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.Name
	}
	return names
}

// StatusSet is a case-insensitive set of status names.
type StatusSet map[string]struct{}

// NewStatusSet builds a set from names.
func NewStatusSet(names ...string) StatusSet {
	set := make(StatusSet, len(names))
	for _, n := range names {
		set[NormalizeStatus(n)] = struct{}{}
	}
	return set
}

// DoneSet returns the set of statuses flagged done.
func DoneSet(statuses []Status) StatusSet {
	set := make(StatusSet)
	for _, s := range statuses {
		if s.Done {
			set[NormalizeStatus(s.Name)] = struct{}{}
		}
	}
	return set
}

// Contains reports whether name is in the set, ignoring case.
func (s StatusSet) Contains(name string) bool {
	_, ok := s[NormalizeStatus(name)]
	return ok
}

// Len returns the number of statuses in the set.
func (s StatusSet) Len() int { return len(s) }
