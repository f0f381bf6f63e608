// Package leadtime fetches issues from a Source and computes how long each
// one spent in every workflow status.
package leadtime

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flowmetrics/leadtime/internal/jira"
	"github.com/flowmetrics/leadtime/internal/timeline"
	"github.com/flowmetrics/leadtime/internal/types"
)

// DefaultConcurrency is the fan-out limit used when Engine.Concurrency is 0.
const DefaultConcurrency = 4

// Source is the read side of the issue tracker. *jira.Client implements it.
type Source interface {
	SearchAll(ctx context.Context, jql string, opts jira.SearchOptions) ([]types.Issue, error)
	GetIssue(ctx context.Context, key string) (*types.Issue, error)
}

// Hooks receive progress notifications. Both may be nil. OnIssue may be
// called from several goroutines at once.
type Hooks struct {
	OnPage  func(jira.Page)
	OnIssue func(key string, err error)
}

// Engine computes lead-time reports.
type Engine struct {
	Source     Source
	Statuses   []types.Status
	Classifier timeline.Classifier
	// Concurrency bounds the number of issues fetched or computed at once.
	Concurrency int
	// Partial keeps successful rows when some issues fail.
	Partial bool
	// PerIssue fetches every key with its own request instead of one search.
	PerIssue bool
	// Now is the reference time for open intervals. Defaults to time.Now.
	Now   func() time.Time
	Hooks Hooks
}

// Request selects the issues of a report: either explicit keys or a JQL
// query. Keys win when both are set.
type Request struct {
	Keys  []string
	Query string
}

// Failure records an issue that could not be reported in partial mode.
type Failure struct {
	Key     string `json:"key"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

// Report is the outcome of Engine.Run.
type Report struct {
	Statuses []types.Status       `json:"statuses"`
	Results  []types.TimingResult `json:"results"`
	Failures []Failure            `json:"failures,omitempty"`
}

// MissingIssueError is returned when a requested key is absent from the
// search results.
type MissingIssueError struct {
	Key string
}

func (e *MissingIssueError) Error() string {
	return fmt.Sprintf("issue %s not found", e.Key)
}

// IssueError attributes a computation failure to an issue.
type IssueError struct {
	Key string
	Err error
}

func (e *IssueError) Error() string { return fmt.Sprintf("%s: %v", e.Key, e.Err) }

func (e *IssueError) Unwrap() error { return e.Err }

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) limit() int {
	if e.Concurrency > 0 {
		return e.Concurrency
	}
	return DefaultConcurrency
}

// Run fetches the requested issues and computes their timings. Results keep
// the order of req.Keys, or the search order for a query.
func (e *Engine) Run(ctx context.Context, req Request) (*Report, error) {
	keys := dedupe(req.Keys)
	if len(keys) == 0 && req.Query == "" {
		return nil, fmt.Errorf("no issue keys or query given")
	}

	now := e.now()
	var slots []slot
	var err error
	switch {
	case len(keys) > 0 && e.PerIssue:
		slots, err = e.fetchEach(ctx, keys)
	case len(keys) > 0:
		slots, err = e.fetchKeys(ctx, keys)
	default:
		slots, err = e.fetchQuery(ctx, req.Query)
	}
	if err != nil {
		return nil, err
	}

	if err := e.computeAll(ctx, slots, now); err != nil {
		return nil, err
	}

	report := &Report{Statuses: e.Statuses, Results: make([]types.TimingResult, 0, len(slots))}
	for _, s := range slots {
		if s.err != nil {
			report.Failures = append(report.Failures, Failure{Key: s.key, Message: s.err.Error(), Err: s.err})
			continue
		}
		report.Results = append(report.Results, s.result)
	}
	return report, nil
}

// slot holds one issue's progress through the pipeline, indexed by its
// position in the output.
type slot struct {
	key    string
	issue  *types.Issue
	result types.TimingResult
	err    error
}

func (e *Engine) searchOptions() jira.SearchOptions {
	return jira.SearchOptions{
		Expand: []string{jira.ExpandChangelog},
		OnPage: e.Hooks.OnPage,
	}
}

func (e *Engine) fetchQuery(ctx context.Context, jql string) ([]slot, error) {
	issues, err := e.Source.SearchAll(ctx, jql, e.searchOptions())
	if err != nil {
		return nil, err
	}
	slots := make([]slot, len(issues))
	for i := range issues {
		slots[i] = slot{key: issues[i].Key, issue: &issues[i]}
	}
	return slots, nil
}

func (e *Engine) fetchKeys(ctx context.Context, keys []string) ([]slot, error) {
	issues, err := e.Source.SearchAll(ctx, jira.KeysQuery(keys), e.searchOptions())
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*types.Issue, len(issues))
	for i := range issues {
		byKey[normalizeKey(issues[i].Key)] = &issues[i]
	}

	slots := make([]slot, len(keys))
	for i, k := range keys {
		slots[i].key = k
		issue, ok := byKey[normalizeKey(k)]
		if !ok {
			if !e.Partial {
				return nil, &MissingIssueError{Key: k}
			}
			slots[i].err = &MissingIssueError{Key: k}
			e.notify(k, slots[i].err)
			continue
		}
		slots[i].issue = issue
	}
	return slots, nil
}

func (e *Engine) fetchEach(ctx context.Context, keys []string) ([]slot, error) {
	slots := make([]slot, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit())
	for i, k := range keys {
		slots[i].key = k
		g.Go(func() error {
			issue, err := e.Source.GetIssue(gctx, k)
			if err != nil {
				if !e.Partial {
					return err
				}
				slots[i].err = err
				e.notify(k, err)
				return nil
			}
			slots[i].issue = issue
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}

func (e *Engine) computeAll(ctx context.Context, slots []slot, now time.Time) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit())
	for i := range slots {
		s := &slots[i]
		if s.issue == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := Compute(*s.issue, e.Classifier, now)
			if err != nil {
				err = &IssueError{Key: s.key, Err: err}
				e.notify(s.key, err)
				if !e.Partial {
					return err
				}
				s.err = err
				return nil
			}
			s.result = result
			e.notify(s.key, nil)
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) notify(key string, err error) {
	if e.Hooks.OnIssue != nil {
		e.Hooks.OnIssue(key, err)
	}
}

// Compute derives the timing result of a single issue.
func Compute(issue types.Issue, cls timeline.Classifier, now time.Time) (types.TimingResult, error) {
	if err := jira.CheckChangelog(issue); err != nil {
		return types.TimingResult{}, err
	}

	transitions := timeline.Normalize(issue)
	tl, err := timeline.Reconstruct(issue.Created, transitions, now, timeline.CurrentStatusOf(issue))
	if err != nil {
		return types.TimingResult{}, err
	}

	times := tl.Intervals
	if len(transitions) == 0 && now.Before(issue.Created) {
		return types.TimingResult{}, &timeline.DataIntegrityError{Status: tl.Current, Start: issue.Created, End: now}
	}
	if len(transitions) == 0 && tl.Current != "" {
		// An issue that never moved has been in its current status since
		// creation.
		times = types.Durations{}
		times.Add(tl.Current, now.Unix()-issue.Created.Unix())
	}

	current := tl.Current
	if n := len(transitions); n > 0 {
		current = transitions[n-1].ToDisplay
	} else if issue.Status != "" {
		current = issue.Status
	}

	return types.TimingResult{
		Key:           issue.Key,
		Summary:       issue.Summary,
		StoryPoints:   issue.StoryPoints,
		Created:       issue.Created,
		Completed:     cls.Classify(transitions),
		CurrentStatus: current,
		Times:         times,
	}, nil
}

// FinishedDuring returns the sorted keys of project issues that landed in a
// done status between from and to (both whole days, inclusive). Only
// transitions inside the period count.
func (e *Engine) FinishedDuring(ctx context.Context, project string, issueTypes []string, from, to time.Time) ([]string, error) {
	if project == "" {
		return nil, fmt.Errorf("project is required")
	}
	if to.Before(from) {
		return nil, fmt.Errorf("period end %s is before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	jql := jira.PeriodQuery(project, issueTypes, from, to)
	issues, err := e.Source.SearchAll(ctx, jql, e.searchOptions())
	if err != nil {
		return nil, err
	}

	cls := timeline.Classifier{
		Done:   e.Classifier.Done,
		Policy: timeline.PolicyTrailingRun,
		// Window bounds are exclusive.
		Window: timeline.Window{From: from.Add(-time.Nanosecond), To: to.AddDate(0, 0, 1)},
	}

	var keys []string
	for _, issue := range issues {
		if err := jira.CheckChangelog(issue); err != nil {
			if !e.Partial {
				return nil, err
			}
			e.notify(issue.Key, err)
			continue
		}
		if cls.Classify(timeline.Normalize(issue)) != nil {
			keys = append(keys, issue.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// dedupe drops empty and repeated keys, keeping first occurrences.
func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		n := normalizeKey(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, k)
	}
	return out
}

func normalizeKey(k string) string {
	return strings.ToUpper(strings.TrimSpace(k))
}
