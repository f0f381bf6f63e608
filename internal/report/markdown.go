package report

import (
	"fmt"
	"strings"

	"github.com/flowmetrics/leadtime/internal/leadtime"
)

// Markdown renders rep as a GitHub-flavored markdown table with
// human-readable durations.
func Markdown(rep *leadtime.Report, opts Options) string {
	columns := Columns(rep, opts)
	header := Header(columns, opts)
	fixed := len(header) - len(columns)

	var b strings.Builder
	writeMarkdownRow(&b, header)

	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
		if i >= fixed {
			sep[i] = "---:"
		}
	}
	writeMarkdownRow(&b, sep)

	for _, r := range rep.Results {
		row := Row(r, columns, opts)
		for i, c := range columns {
			row[fixed+i] = HumanDuration(r.Times.Get(c))
		}
		writeMarkdownRow(&b, row)
	}

	if len(rep.Failures) > 0 {
		b.WriteString("\n**Failed issues**\n\n")
		for _, f := range rep.Failures {
			fmt.Fprintf(&b, "- %s: %s\n", f.Key, escapeCell(f.Message))
		}
	}
	return b.String()
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escapeCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// HumanDuration renders seconds as the two largest of days, hours and
// minutes ("3d 4h", "2h 5m", "45s"); "-" for zero.
func HumanDuration(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}
	const (
		minute = 60
		hour   = 60 * minute
		day    = 24 * hour
	)
	d, h, m := seconds/day, seconds%day/hour, seconds%hour/minute
	switch {
	case d > 0 && h > 0:
		return fmt.Sprintf("%dd %dh", d, h)
	case d > 0:
		return fmt.Sprintf("%dd", d)
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", seconds)
}
