// Package leadtime provides a minimal public API for embedding leadtime's
// time-in-status computation in other Go programs.
//
// Most callers should use the leadtime CLI. This package exports only the
// types and constructors needed to fetch issues from Jira and compute
// per-status durations programmatically.
package leadtime

import (
	"time"

	"github.com/flowmetrics/leadtime/internal/config"
	engine "github.com/flowmetrics/leadtime/internal/leadtime"
	"github.com/flowmetrics/leadtime/internal/jira"
	"github.com/flowmetrics/leadtime/internal/timeline"
	"github.com/flowmetrics/leadtime/internal/types"
)

// Core types for working with issues
type (
	Issue        = types.Issue
	ChangeEvent  = types.ChangeEvent
	FieldChange  = types.FieldChange
	Status       = types.Status
	TimingResult = types.TimingResult
	Durations    = types.Durations
	Policy       = timeline.Policy
)

// Engine types
type (
	Engine  = engine.Engine
	Request = engine.Request
	Report  = engine.Report
	Failure = engine.Failure
)

// Error types
type (
	ConfigurationError = config.ConfigurationError
	DataIntegrityError = timeline.DataIntegrityError
	MissingIssueError  = engine.MissingIssueError
	FetchError         = jira.FetchError
	SchemaError        = jira.SchemaError
)

// Completion policies
const (
	PolicyClearOnReopen = timeline.PolicyClearOnReopen
	PolicyTrailingRun   = timeline.PolicyTrailingRun
)

// Config describes a Jira connection and the workflow to report on.
type Config struct {
	URL      string
	Username string // empty for bearer-token auth
	APIToken string
	Statuses []Status
	Policy   Policy
}

// NewEngine returns an engine reading from the Jira instance in cfg.
// At least one status must be flagged done. Invalid settings are reported
// as *ConfigurationError.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.URL == "" {
		return nil, &ConfigurationError{Key: "jira.url", Reason: "required"}
	}
	if cfg.APIToken == "" {
		return nil, &ConfigurationError{Key: "jira.api_token", Reason: "required"}
	}
	cls, err := classifier(cfg.Statuses, cfg.Policy)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Source:     jira.NewClient(cfg.URL, cfg.Username, cfg.APIToken),
		Statuses:   cfg.Statuses,
		Classifier: cls,
	}, nil
}

// Compute returns the time-in-status of an already fetched issue as of now.
// An empty policy means PolicyClearOnReopen.
func Compute(issue Issue, statuses []Status, policy Policy, now time.Time) (TimingResult, error) {
	cls, err := classifier(statuses, policy)
	if err != nil {
		return TimingResult{}, err
	}
	return engine.Compute(issue, cls, now)
}

func classifier(statuses []Status, policy Policy) (timeline.Classifier, error) {
	done, _, err := config.DoneStatuses(statuses, false)
	if err != nil {
		return timeline.Classifier{}, err
	}
	p, err := timeline.ParsePolicy(string(policy))
	if err != nil {
		return timeline.Classifier{}, &ConfigurationError{Key: "completion.policy", Reason: err.Error()}
	}
	return timeline.Classifier{Done: done, Policy: p}, nil
}
