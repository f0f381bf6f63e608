package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowmetrics/leadtime/internal/config"
)

var testNow = time.Date(2020, 1, 5, 12, 0, 0, 0, time.UTC)

// TestMain runs every command test from an empty temp dir so that no
// leadtime.yaml or Jira credentials from the machine leak in.
func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "leadtime-cmd-tests-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	oldWD, _ := os.Getwd()

	_ = os.Chdir(tmp)
	_ = os.Setenv("HOME", tmp)
	_ = os.Setenv("USERPROFILE", tmp)
	_ = os.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg-config"))
	_ = os.Setenv("NO_COLOR", "1")
	_ = os.Setenv("LEADTIME_NO_PAGER", "1")
	for _, k := range []string{"JIRA_URL", "JIRA_USERNAME", "JIRA_API_TOKEN", "LEADTIME_OTEL_ENABLED"} {
		_ = os.Unsetenv(k)
	}

	now = func() time.Time { return testNow }

	code := m.Run()

	_ = os.Chdir(oldWD)
	_ = os.RemoveAll(tmp)
	os.Exit(code)
}

// resetConfig gives a test a fresh configuration with the given overrides.
func resetConfig(t *testing.T, values map[string]interface{}) {
	t.Helper()
	config.ResetForTesting()
	if err := config.Initialize(); err != nil {
		t.Fatalf("config.Initialize: %v", err)
	}
	for k, v := range values {
		config.Set(k, v)
	}
	t.Cleanup(config.ResetForTesting)
}
