package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flowmetrics/leadtime/internal/config"
	"github.com/flowmetrics/leadtime/internal/debug"
	"github.com/flowmetrics/leadtime/internal/leadtime"
	"github.com/flowmetrics/leadtime/internal/report"
	"github.com/flowmetrics/leadtime/internal/ui"
)

var reportCmd = &cobra.Command{
	Use:     "report [KEY...]",
	GroupID: "reports",
	Short:   "Write time-in-status for issues as CSV",
	Long: `Fetch issues with their changelogs and report, per issue, when it was
created, when it was finished and how many seconds it spent in every
configured status.

Issues are selected by key or by a JQL query. Columns follow the order of
the statuses configured in leadtime.yaml.

Examples:
  leadtime report --file=out.csv --query="project in (abc,bcd) and type in (bug,task,story) and status = done"
  leadtime report --file=out.csv ABC-1 BCD-1
  leadtime report ABC-1
  leadtime report --format markdown --show-summary ABC-1 ABC-2`,
	Run: runReport,
}

func init() {
	reportCmd.Flags().String("query", "", "JQL query selecting the issues (instead of keys)")
	reportCmd.Flags().StringP("file", "f", "", "Write output to a file instead of stdout")
	reportCmd.Flags().Bool("show-summary", false, "Include the Summary column")
	reportCmd.Flags().Bool("hide-summary", false, "Omit the Summary column")
	reportCmd.Flags().Bool("story-points", false, "Include the Story Points column")
	reportCmd.Flags().Bool("all-statuses", false, "Add columns for statuses that are not configured")
	reportCmd.Flags().String("format", "", "Output format: csv, json, markdown (default from report.format)")
	reportCmd.Flags().Bool("per-issue", false, "Fetch every key with its own request")
	reportCmd.Flags().Bool("partial", false, "Report the issues that succeeded when others fail")
	reportCmd.Flags().Int("concurrency", 0, "Number of issues fetched/computed at once (default from config)")
	reportCmd.Flags().String("policy", "", "Completion policy: clear-on-reopen or trailing-run")
	reportCmd.Flags().Bool("no-pager", false, "Disable pager for markdown output")
	reportCmd.MarkFlagsMutuallyExclusive("show-summary", "hide-summary")

	rootCmd.AddCommand(reportCmd)
}

// reportRequest is a fully resolved report invocation.
type reportRequest struct {
	Request leadtime.Request
	File    string
	Format  report.Format
	Layout  report.Options
	NoPager bool
	// PerIssue fetches keys one by one.
	PerIssue bool
}

func runReport(cmd *cobra.Command, args []string) {
	query, _ := cmd.Flags().GetString("query")
	if len(args) == 0 && query == "" {
		_ = cmd.Usage()
		return
	}

	applyReportFlags(cmd)

	req, err := resolveReportRequest(cmd, args)
	if err != nil {
		fail(err)
	}
	if err := executeReport(rootCtx, os.Stdout, req); err != nil {
		fail(err)
	}
}

// applyReportFlags copies explicitly set flags over config values.
func applyReportFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("show-summary") {
		config.Set("report.show-summary", true)
	}
	if flags.Changed("hide-summary") {
		config.Set("report.show-summary", false)
	}
	if flags.Changed("story-points") {
		v, _ := flags.GetBool("story-points")
		config.Set("report.story-points", v)
	}
	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		config.Set("report.format", v)
	}
	if flags.Changed("partial") {
		v, _ := flags.GetBool("partial")
		config.Set("partial", v)
	}
	if flags.Changed("concurrency") {
		v, _ := flags.GetInt("concurrency")
		config.Set("concurrency", v)
	}
	if flags.Changed("policy") {
		v, _ := flags.GetString("policy")
		config.Set("completion.policy", v)
	}
}

func resolveReportRequest(cmd *cobra.Command, args []string) (reportRequest, error) {
	query, _ := cmd.Flags().GetString("query")
	file, _ := cmd.Flags().GetString("file")
	allStatuses, _ := cmd.Flags().GetBool("all-statuses")
	perIssue, _ := cmd.Flags().GetBool("per-issue")
	noPager, _ := cmd.Flags().GetBool("no-pager")

	req := reportRequest{
		File:     file,
		NoPager:  noPager,
		PerIssue: perIssue,
		Layout: report.Options{
			ShowSummary: config.GetBool("report.show-summary"),
			StoryPoints: config.GetBool("report.story-points"),
			AllStatuses: allStatuses,
		},
	}
	if query != "" {
		req.Request.Query = query
	} else {
		req.Request.Keys = args
	}

	format, err := report.ParseFormat(config.GetString("report.format"))
	if err != nil {
		return req, &config.ConfigurationError{Key: "report.format", Reason: err.Error()}
	}
	if jsonOutput {
		format = report.FormatJSON
	}
	req.Format = format
	return req, nil
}

// executeReport runs the engine and writes the report to the file named in
// req, or to stdout.
func executeReport(ctx context.Context, stdout io.Writer, req reportRequest) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	engine.PerIssue = req.PerIssue

	if req.Request.Query != "" {
		debug.PrintNormal("Fetching all results for %s\n", req.Request.Query)
	}
	rep, err := engine.Run(ctx, req.Request)
	if err != nil {
		return err
	}
	for _, f := range rep.Failures {
		debug.Warnf("skipped %s: %s\n", f.Key, f.Message)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, rep, req.Format, req.Layout); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if req.File != "" {
		debug.PrintNormal("Writing to %s\n", req.File)
		if err := writeFileAtomic(req.File, buf.Bytes()); err != nil {
			return err
		}
		debug.PrintNormal("%sSuccess! %d issue(s) written\n", ui.Icon(ui.IconPass), len(rep.Results))
		return nil
	}

	out := buf.String()
	if req.Format == report.FormatMarkdown {
		out = ui.RenderMarkdown(out)
	}
	return ui.ToPager(stdout, out, ui.PagerOptions{NoPager: req.NoPager || req.Format != report.FormatMarkdown})
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	_ = tmp.Chmod(0o644)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
