package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/flowmetrics/leadtime/internal/config"
	"github.com/flowmetrics/leadtime/internal/jira"
	"github.com/flowmetrics/leadtime/internal/leadtime"
	"github.com/flowmetrics/leadtime/internal/timeline"
	"github.com/flowmetrics/leadtime/internal/ui"
)

// osExit is swapped out in tests.
var osExit = os.Exit

// exit flushes telemetry before ending the process, since PersistentPostRun
// is skipped once a command exits from Run.
func exit(code int) {
	shutdownTelemetry()
	osExit(code)
}

// FatalError writes an error message to stderr and exits with code 1.
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	exit(1)
}

// FatalErrorWithHint writes an error message with a hint to stderr and exits.
func FatalErrorWithHint(message, hint string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	exit(1)
}

// fail reports err in the active output mode and exits.
func fail(err error) {
	code, hint := classifyError(err)
	if jsonOutput {
		outputJSONError(err, code)
		return
	}
	msg := ui.Icon(ui.IconFail) + err.Error()
	if hint != "" {
		FatalErrorWithHint(msg, hint)
		return
	}
	FatalError("%s", msg)
}

// classifyError maps typed errors to a stable JSON error code and an
// optional hint for humans.
func classifyError(err error) (code, hint string) {
	var (
		cfgErr   *config.ConfigurationError
		trunc    *jira.ChangelogTruncatedError
		fetchErr *jira.FetchError
		dataErr  *timeline.DataIntegrityError
		missing  *leadtime.MissingIssueError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "configuration", "Run 'leadtime config show' to inspect the effective settings"
	case errors.As(err, &trunc):
		return "changelog_truncated", "Use --partial to skip issues with long histories"
	case errors.As(err, &missing):
		return "not_found", "Check the issue key, or use --partial to skip missing issues"
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode == 401 || fetchErr.StatusCode == 403 {
			return "fetch", "Check jira.username and jira.api_token (JIRA_USERNAME, JIRA_API_TOKEN)"
		}
		return "fetch", ""
	case errors.As(err, &dataErr):
		return "data_integrity", ""
	}
	return "", ""
}
