package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/flowmetrics/leadtime/internal/types"
)

const (
	opSearch   = "search"
	opGetIssue = "get issue"

	// ExpandChangelog asks Jira to embed each issue's changelog.
	ExpandChangelog = "changelog"
)

// baseFields is the set of issue fields requested in search/get queries.
var baseFields = []string{"summary", "status", "created"}

// Client provides read-only HTTP access to a Jira instance.
type Client struct {
	URL              string
	Username         string
	APIToken         string
	APIVersion       string
	PageSize         int
	StoryPointsField string
	HTTPClient       *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithAPIVersion selects the REST API version ("2" or "3").
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.APIVersion = v
		}
	}
}

// WithPageSize sets maxResults for searches. 0 leaves it to the server.
func WithPageSize(n int) Option {
	return func(c *Client) { c.PageSize = n }
}

// WithStoryPointsField sets the custom field id that holds story points.
func WithStoryPointsField(field string) Option {
	return func(c *Client) { c.StoryPointsField = field }
}

// NewClient creates a new Jira client.
func NewClient(url, username, apiToken string, opts ...Option) *Client {
	c := &Client{
		URL:        strings.TrimSuffix(url, "/"),
		Username:   username,
		APIToken:   apiToken,
		APIVersion: "2",
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchOptions controls a paginated search.
type SearchOptions struct {
	// Expand is passed through as the expand parameter (e.g. "changelog").
	Expand []string
	// OnPage, if set, is called after every fetched page.
	OnPage func(Page)
}

// SearchAll runs a JQL query and follows pagination until every result has
// been read. Results are returned in page order. Any page failure aborts the
// whole search with a *FetchError; no partial results are returned.
func (c *Client) SearchAll(ctx context.Context, jql string, opts SearchOptions) ([]types.Issue, error) {
	var all []types.Issue
	startAt := 0
	withChangelog := slices.Contains(opts.Expand, ExpandChangelog)

	for {
		apiURL := c.searchURL(jql, startAt, opts.Expand)

		body, status, err := c.doRequest(ctx, http.MethodGet, apiURL)
		if err != nil {
			return nil, &FetchError{Op: opSearch, Target: jql, StartAt: startAt, StatusCode: status, Err: err}
		}

		var result SearchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, &FetchError{Op: opSearch, Target: jql, StartAt: startAt, Err: fmt.Errorf("parse search response: %w", err)}
		}

		for _, ji := range result.Issues {
			issue, err := ToIssue(ji, c.StoryPointsField, withChangelog)
			if err != nil {
				return nil, &FetchError{Op: opSearch, Target: jql, StartAt: startAt, Err: err}
			}
			all = append(all, issue)
		}

		if opts.OnPage != nil {
			opts.OnPage(Page{
				StartAt:    result.StartAt,
				MaxResults: result.MaxResults,
				Total:      result.Total,
				Count:      len(result.Issues),
			})
		}

		step := result.MaxResults
		if step <= 0 {
			step = len(result.Issues)
		}
		if step <= 0 || result.StartAt+step >= result.Total {
			break
		}
		startAt = result.StartAt + step
	}

	return all, nil
}

// GetIssue fetches a single Jira issue by key (e.g., "PROJ-123") together
// with its changelog.
func (c *Client) GetIssue(ctx context.Context, key string) (*types.Issue, error) {
	params := url.Values{
		"fields": {c.fields()},
		"expand": {ExpandChangelog},
	}
	apiURL := fmt.Sprintf("%s/issue/%s?%s", c.apiBase(), url.PathEscape(key), params.Encode())

	body, status, err := c.doRequest(ctx, http.MethodGet, apiURL)
	if err != nil {
		return nil, &FetchError{Op: opGetIssue, Target: key, StatusCode: status, Err: err}
	}

	var ji Issue
	if err := json.Unmarshal(body, &ji); err != nil {
		return nil, &FetchError{Op: opGetIssue, Target: key, Err: fmt.Errorf("parse issue response: %w", err)}
	}

	issue, err := ToIssue(ji, c.StoryPointsField, true)
	if err != nil {
		return nil, &FetchError{Op: opGetIssue, Target: key, Err: err}
	}
	return &issue, nil
}

func (c *Client) apiBase() string {
	return fmt.Sprintf("%s/rest/api/%s", c.URL, c.APIVersion)
}

func (c *Client) fields() string {
	fields := baseFields
	if c.StoryPointsField != "" {
		fields = append(append([]string{}, baseFields...), c.StoryPointsField)
	}
	return strings.Join(fields, ",")
}

func (c *Client) searchURL(jql string, startAt int, expand []string) string {
	params := url.Values{
		"jql":     {jql},
		"fields":  {c.fields()},
		"startAt": {strconv.Itoa(startAt)},
	}
	if c.PageSize > 0 {
		params.Set("maxResults", strconv.Itoa(c.PageSize))
	}
	if len(expand) > 0 {
		params.Set("expand", strings.Join(expand, ","))
	}
	return fmt.Sprintf("%s/search?%s", c.apiBase(), params.Encode())
}

// doRequest executes an authenticated HTTP request and returns the response
// body and status code.
func (c *Client) doRequest(ctx context.Context, method, apiURL string) ([]byte, int, error) {
	if c.URL == "" {
		return nil, 0, fmt.Errorf("jira URL not configured")
	}
	if c.APIToken == "" {
		return nil, 0, fmt.Errorf("jira API token not configured")
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	c.setAuth(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "leadtime/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(respBody)))
	}

	return respBody, resp.StatusCode, nil
}

// setAuth sets the appropriate authentication header on the request.
// Basic auth when a username is configured, Bearer (PAT) otherwise.
func (c *Client) setAuth(req *http.Request) {
	if c.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.APIToken))
		req.Header.Set("Authorization", "Basic "+auth)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.APIToken)
	}
}
