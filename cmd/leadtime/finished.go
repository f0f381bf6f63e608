package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowmetrics/leadtime/internal/config"
	"github.com/flowmetrics/leadtime/internal/timeparsing"
)

var finishedCmd = &cobra.Command{
	Use:     "finished",
	GroupID: "reports",
	Short:   "List issues that landed in a done status during a period",
	Long: `List the keys of project issues whose latest moves during the period ended
in a done status. Only transitions inside the period count, so an issue
finished earlier and merely edited during the period is not listed.

Dates accept YYYY-MM-DD, compact offsets (-2w, -1m) or phrases such as
"last monday". Both ends are whole days and inclusive.

Examples:
  leadtime finished --project ABC --from 2024-01-01 --to 2024-01-31
  leadtime finished --project ABC --from -2w --type Story --type Bug
  leadtime report $(leadtime finished --project ABC --from -1m)`,
	Run: runFinished,
}

func init() {
	finishedCmd.Flags().String("project", "", "Jira project key (required)")
	finishedCmd.Flags().String("from", "", "First day of the period (required)")
	finishedCmd.Flags().String("to", "today", "Last day of the period")
	finishedCmd.Flags().StringSlice("type", nil, "Restrict to issue types (repeatable)")
	finishedCmd.Flags().Bool("partial", false, "Skip issues that cannot be classified")
	_ = finishedCmd.MarkFlagRequired("project")
	_ = finishedCmd.MarkFlagRequired("from")

	rootCmd.AddCommand(finishedCmd)
}

// period is an inclusive range of whole days.
type period struct {
	From time.Time
	To   time.Time
}

func parsePeriod(from, to string, ref time.Time) (period, error) {
	start, err := timeparsing.ParseDay(from, ref)
	if err != nil {
		return period{}, fmt.Errorf("--from: %w", err)
	}
	end := timeparsing.StartOfDay(ref)
	if strings.TrimSpace(to) != "" && to != "today" {
		if end, err = timeparsing.ParseDay(to, ref); err != nil {
			return period{}, fmt.Errorf("--to: %w", err)
		}
	}
	if end.Before(start) {
		return period{}, fmt.Errorf("--to (%s) is before --from (%s)", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return period{From: start, To: end}, nil
}

func runFinished(cmd *cobra.Command, args []string) {
	project, _ := cmd.Flags().GetString("project")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	types, _ := cmd.Flags().GetStringSlice("type")
	if cmd.Flags().Changed("partial") {
		v, _ := cmd.Flags().GetBool("partial")
		config.Set("partial", v)
	}

	p, err := parsePeriod(from, to, now())
	if err != nil {
		FatalError("%v", err)
	}

	keys, err := executeFinished(rootCtx, project, types, p)
	if err != nil {
		fail(err)
	}

	if jsonOutput {
		outputJSON(map[string]interface{}{
			"project": project,
			"from":    p.From.Format("2006-01-02"),
			"to":      p.To.Format("2006-01-02"),
			"keys":    keys,
		})
		return
	}
	printKeys(os.Stdout, keys)
}

func executeFinished(ctx context.Context, project string, types []string, p period) ([]string, error) {
	engine, err := newEngine()
	if err != nil {
		return nil, err
	}
	return engine.FinishedDuring(ctx, project, types, p.From, p.To)
}

func printKeys(w io.Writer, keys []string) {
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
}
