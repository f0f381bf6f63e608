package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flowmetrics/leadtime/internal/config"
	"github.com/flowmetrics/leadtime/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Inspect leadtime configuration",
	Long: `Inspect the effective configuration.

Settings come from leadtime.yaml, LEADTIME_* environment variables and
command-line flags, in increasing priority. Example leadtime.yaml:

  jira:
    url: https://company.atlassian.net
    username: me@company.com
    story_points_field: customfield_10002
  statuses:
    - To Do
    - In Progress
    - name: Done
      done: true
  report:
    show-summary: true`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Run: func(cmd *cobra.Command, args []string) {
		settings := config.Redacted()

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"config_file": config.ConfigFileUsed(),
				"settings":    settings,
			})
			return
		}

		if file := config.ConfigFileUsed(); file != "" {
			fmt.Println(ui.RenderMuted("# " + file))
		} else {
			fmt.Println(ui.RenderMuted("# no config file found, showing defaults and environment"))
		}
		out, err := yaml.Marshal(settings)
		if err != nil {
			FatalError("encoding config: %v", err)
		}
		fmt.Print(string(out))
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
