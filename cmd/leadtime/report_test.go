package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmetrics/leadtime/internal/config"
	"github.com/flowmetrics/leadtime/internal/jira"
	"github.com/flowmetrics/leadtime/internal/leadtime"
	"github.com/flowmetrics/leadtime/internal/report"
)

func statusChange(at, from, to string) map[string]interface{} {
	return map[string]interface{}{
		"created": at,
		"items": []interface{}{map[string]interface{}{
			"field":      "status",
			"from":       "id-" + from,
			"fromString": from,
			"to":         "id-" + to,
			"toString":   to,
		}},
	}
}

// jiraIssue is created at noon on 2020-01-01 and was done on 2020-01-04.
func jiraIssue(key string) map[string]interface{} {
	histories := []interface{}{
		statusChange("2020-01-02T12:00:00.000+0000", "To Do", "In Progress"),
		statusChange("2020-01-04T12:00:00.000+0000", "In Progress", "Done"),
	}
	return map[string]interface{}{
		"key": key,
		"fields": map[string]interface{}{
			"summary": "Summary of " + key,
			"created": "2020-01-01T12:00:00.000+0000",
			"status":  map[string]string{"name": "Done"},
		},
		"changelog": map[string]interface{}{
			"startAt":    0,
			"maxResults": len(histories),
			"total":      len(histories),
			"histories":  histories,
		},
	}
}

// fakeJira answers searches with the given keys and counts requests.
func fakeJira(t *testing.T, keys []string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		var issues []interface{}
		for _, k := range keys {
			issues = append(issues, jiraIssue(k))
		}
		switch {
		case r.URL.Path == "/rest/api/2/search":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"startAt":    0,
				"maxResults": 50,
				"total":      len(issues),
				"issues":     issues,
			})
		case strings.HasPrefix(r.URL.Path, "/rest/api/2/issue/"):
			key := strings.TrimPrefix(r.URL.Path, "/rest/api/2/issue/")
			_ = json.NewEncoder(w).Encode(jiraIssue(key))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func jiraConfig(url string) map[string]interface{} {
	return map[string]interface{}{
		"jira.url":       url,
		"jira.api_token": "secret-token",
		"statuses":       []string{"To Do", "In Progress", "*Done"},
	}
}

func keyRequest(keys ...string) reportRequest {
	return reportRequest{
		Request: leadtime.Request{Keys: keys},
		Format:  report.FormatCSV,
	}
}

func TestExecuteReportCSV(t *testing.T) {
	var hits int32
	srv := fakeJira(t, []string{"ABC-1", "ABC-2"}, &hits)
	resetConfig(t, jiraConfig(srv.URL))

	var out bytes.Buffer
	require.NoError(t, executeReport(context.Background(), &out, keyRequest("ABC-2", "ABC-1")))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Key,Created,Finished,To Do,In Progress,Done", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ABC-2,"), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], ",86400,172800,86400"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "ABC-1,"), lines[2])
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestExecuteReportToFile(t *testing.T) {
	var hits int32
	srv := fakeJira(t, []string{"ABC-1"}, &hits)
	resetConfig(t, jiraConfig(srv.URL))

	path := filepath.Join(t.TempDir(), "out.csv")
	req := keyRequest("ABC-1")
	req.File = path
	req.Layout = report.Options{ShowSummary: true}

	var out bytes.Buffer
	require.NoError(t, executeReport(context.Background(), &out, req))
	assert.Empty(t, out.String(), "report goes to the file, not stdout")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Key,Summary,Created,Finished,To Do,In Progress,Done\n")
	assert.Contains(t, string(data), "ABC-1,Summary of ABC-1,")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestExecuteReportJSONPerIssue(t *testing.T) {
	var hits int32
	srv := fakeJira(t, nil, &hits)
	resetConfig(t, jiraConfig(srv.URL))

	req := keyRequest("ABC-1", "ABC-3")
	req.Format = report.FormatJSON
	req.PerIssue = true

	var out bytes.Buffer
	require.NoError(t, executeReport(context.Background(), &out, req))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	var got struct {
		Issues []struct {
			Key   string           `json:"key"`
			Times map[string]int64 `json:"times"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got.Issues, 2)
	assert.Equal(t, "ABC-1", got.Issues[0].Key)
	assert.Equal(t, "ABC-3", got.Issues[1].Key)
}

func TestExecuteReportConfigErrorsBeforeFetch(t *testing.T) {
	tests := []struct {
		name   string
		change map[string]interface{}
		key    string
	}{
		{"no done status", map[string]interface{}{"statuses": []string{"To Do", "Done"}}, "statuses"},
		{"bad policy", map[string]interface{}{"completion.policy": "sometimes"}, "completion.policy"},
		{"bad concurrency", map[string]interface{}{"concurrency": 0}, "concurrency"},
		{"missing token", map[string]interface{}{"jira.api_token": ""}, "jira.api_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			srv := fakeJira(t, []string{"ABC-1"}, &hits)
			values := jiraConfig(srv.URL)
			for k, v := range tt.change {
				values[k] = v
			}
			resetConfig(t, values)

			var out bytes.Buffer
			err := executeReport(context.Background(), &out, keyRequest("ABC-1"))

			var cfgErr *config.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.key, cfgErr.Key)
			assert.Zero(t, atomic.LoadInt32(&hits), "nothing fetched on configuration errors")
			assert.Empty(t, out.String())
		})
	}
}

func TestExecuteReportMissingKey(t *testing.T) {
	var hits int32
	srv := fakeJira(t, []string{"ABC-1"}, &hits)

	t.Run("strict", func(t *testing.T) {
		resetConfig(t, jiraConfig(srv.URL))
		var out bytes.Buffer
		err := executeReport(context.Background(), &out, keyRequest("ABC-1", "ABC-2"))
		var missing *leadtime.MissingIssueError
		require.True(t, errors.As(err, &missing), "got %v", err)
		assert.Equal(t, "ABC-2", missing.Key)
		assert.Empty(t, out.String())
	})

	t.Run("partial", func(t *testing.T) {
		values := jiraConfig(srv.URL)
		values["partial"] = true
		resetConfig(t, values)
		var out bytes.Buffer
		require.NoError(t, executeReport(context.Background(), &out, keyRequest("ABC-1", "ABC-2")))
		assert.Contains(t, out.String(), "ABC-1,")
		assert.NotContains(t, out.String(), "ABC-2")
	})
}

func TestExecuteReportRejectsMissingChangelog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		issue := jiraIssue("ABC-1")
		delete(issue, "changelog")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"startAt": 0, "maxResults": 50, "total": 1, "issues": []interface{}{issue},
		})
	}))
	t.Cleanup(srv.Close)
	resetConfig(t, jiraConfig(srv.URL))

	var out bytes.Buffer
	err := executeReport(context.Background(), &out, keyRequest("ABC-1"))

	var fetchErr *jira.FetchError
	require.True(t, errors.As(err, &fetchErr), "got %v", err)
	code, _ := classifyError(err)
	assert.Equal(t, "fetch", code)
	assert.Empty(t, out.String(), "no row for an issue whose history was not fetched")
}

func TestResolveReportRequest(t *testing.T) {
	resetConfig(t, map[string]interface{}{"report.format": "md", "report.show-summary": true})

	cmd := reportCmd
	t.Cleanup(func() {
		_ = cmd.Flags().Set("file", "")
		cmd.Flags().Lookup("file").Changed = false
	})
	require.NoError(t, cmd.Flags().Set("file", "out.md"))

	req, err := resolveReportRequest(cmd, []string{"ABC-1"})
	require.NoError(t, err)
	assert.Equal(t, report.FormatMarkdown, req.Format)
	assert.True(t, req.Layout.ShowSummary)
	assert.Equal(t, []string{"ABC-1"}, req.Request.Keys)
	assert.Equal(t, "out.md", req.File)

	config.Set("report.format", "xml")
	_, err = resolveReportRequest(cmd, nil)
	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "report.format", cfgErr.Key)
}
