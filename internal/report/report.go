// Package report renders lead-time results as CSV, JSON or a markdown table.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/flowmetrics/leadtime/internal/leadtime"
	"github.com/flowmetrics/leadtime/internal/types"
)

// Format is an output format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name. "" selects CSV and "md" is accepted
// for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown report format %q (valid: csv, json, markdown)", s)
}

// Options controls the report layout.
type Options struct {
	ShowSummary bool
	StoryPoints bool
	// AllStatuses adds columns for statuses found in the data but missing
	// from the configuration.
	AllStatuses bool
	// Location is used for the Created and Finished dates. Defaults to
	// time.Local.
	Location *time.Location
}

func (o Options) location() *time.Location {
	if o.Location != nil {
		return o.Location
	}
	return time.Local
}

// Write renders rep to w in the given format.
func Write(w io.Writer, rep *leadtime.Report, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, rep, opts)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(rep, opts))
		return err
	default:
		return WriteCSV(w, rep, opts)
	}
}

// Columns returns the status columns of rep: configured statuses in order,
// then (with AllStatuses) unconfigured ones alphabetically.
func Columns(rep *leadtime.Report, opts Options) []string {
	cols := types.StatusNames(rep.Statuses)
	if !opts.AllStatuses {
		return cols
	}

	known := types.NewStatusSet(cols...)
	extra := make(map[string]bool)
	for _, r := range rep.Results {
		for _, s := range r.Times.Statuses() {
			if !known.Contains(s) {
				extra[s] = true
			}
		}
	}
	names := make([]string, 0, len(extra))
	for s := range extra {
		names = append(names, s)
	}
	sort.Strings(names)
	return append(cols, names...)
}

// Header returns the table header for the given status columns.
func Header(columns []string, opts Options) []string {
	header := []string{"Key"}
	if opts.StoryPoints {
		header = append(header, "Story Points")
	}
	if opts.ShowSummary {
		header = append(header, "Summary")
	}
	header = append(header, "Created", "Finished")
	return append(header, columns...)
}

// Row returns the cells of r. Status cells hold whole seconds, 0 when the
// issue never was in that status.
func Row(r types.TimingResult, columns []string, opts Options) []string {
	loc := opts.location()
	row := []string{r.Key}
	if opts.StoryPoints {
		row = append(row, FormatPoints(r.StoryPoints))
	}
	if opts.ShowSummary {
		row = append(row, r.Summary)
	}
	finished := ""
	if r.Completed != nil {
		finished = FormatDate(*r.Completed, loc)
	}
	row = append(row, FormatDate(r.Created, loc), finished)
	for _, c := range columns {
		row = append(row, strconv.FormatInt(r.Times.Get(c), 10))
	}
	return row
}

// FormatDate renders t as YYYY-M-D (no zero padding) in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	y, m, d := t.In(loc).Date()
	return fmt.Sprintf("%d-%d-%d", y, int(m), d)
}

// FormatPoints renders story points, "" when unset.
func FormatPoints(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
