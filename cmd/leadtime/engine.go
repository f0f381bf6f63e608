package main

import (
	"github.com/flowmetrics/leadtime/internal/config"
	"github.com/flowmetrics/leadtime/internal/debug"
	"github.com/flowmetrics/leadtime/internal/jira"
	"github.com/flowmetrics/leadtime/internal/leadtime"
	"github.com/flowmetrics/leadtime/internal/telemetry"
	"github.com/flowmetrics/leadtime/internal/timeline"
	"github.com/flowmetrics/leadtime/internal/types"
)

// loadStatuses returns the configured statuses and the done set. A guessed
// done status is reported as a warning.
func loadStatuses() ([]types.Status, types.StatusSet, error) {
	statuses, err := config.LoadStatuses()
	if err != nil {
		return nil, nil, err
	}
	done, guessed, err := config.DoneStatuses(statuses, config.GetBool("completion.guess-done"))
	if err != nil {
		return nil, nil, err
	}
	if guessed {
		last := statuses[len(statuses)-1].Name
		debug.Warnf("no status marked as done, guessing %q\n", last)
		debug.PrintNormal("Mark done statuses with done: true (or a leading '*') in leadtime.yaml\n")
	}
	return statuses, done, nil
}

// newJiraClient builds the Jira client from config.
func newJiraClient() (*jira.Client, error) {
	s := config.Jira()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	opts := []jira.Option{
		jira.WithAPIVersion(s.APIVersion),
		jira.WithPageSize(s.PageSize),
		jira.WithStoryPointsField(s.StoryPointsField),
	}
	if s.Timeout > 0 {
		opts = append(opts, jira.WithTimeout(s.Timeout))
	}
	return jira.NewClient(s.URL, s.Username, s.APIToken, opts...), nil
}

// newEngine validates every setting and wires the engine. Nothing is
// fetched here, so configuration errors surface before any request.
func newEngine() (*leadtime.Engine, error) {
	statuses, done, err := loadStatuses()
	if err != nil {
		return nil, err
	}

	policy, err := timeline.ParsePolicy(config.GetString("completion.policy"))
	if err != nil {
		return nil, &config.ConfigurationError{Key: "completion.policy", Reason: err.Error()}
	}

	concurrency := config.GetInt("concurrency")
	if concurrency < 1 {
		return nil, &config.ConfigurationError{Key: "concurrency", Reason: "must be at least 1"}
	}

	client, err := newJiraClient()
	if err != nil {
		return nil, err
	}

	return &leadtime.Engine{
		Source:      telemetry.WrapSource(client),
		Statuses:    statuses,
		Classifier:  timeline.Classifier{Done: done, Policy: policy},
		Concurrency: concurrency,
		Partial:     config.GetBool("partial"),
		Now:         now,
		Hooks: leadtime.Hooks{
			OnPage: func(p jira.Page) {
				debug.Logf("Got %d..%d/%d\n", p.StartAt, p.StartAt+p.Count, p.Total)
			},
			OnIssue: func(key string, err error) {
				if err != nil {
					debug.Logf("%s: %v\n", key, err)
					return
				}
				debug.Tracef("computed %s\n", key)
			},
		},
	}, nil
}
