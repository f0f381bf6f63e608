package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowmetrics/leadtime/internal/config"
	"github.com/flowmetrics/leadtime/internal/ui"
)

var statusesCmd = &cobra.Command{
	Use:     "statuses",
	GroupID: "setup",
	Short:   "Show the configured statuses in report column order",
	Run: func(cmd *cobra.Command, args []string) {
		statuses, done, err := loadStatuses()
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			outputJSON(statuses)
			return
		}

		for i, s := range statuses {
			name := s.Name
			marker := ""
			if done.Contains(s.Name) {
				name = ui.RenderDone(name)
				marker = ui.RenderMuted(" (done)")
			}
			fmt.Printf("%2d. %s%s\n", i+1, name, marker)
		}
		if src := config.GetString("statuses-file"); src != "" {
			fmt.Println(ui.RenderMuted("from " + src))
		}
	},
}

func init() {
	rootCmd.AddCommand(statusesCmd)
}
