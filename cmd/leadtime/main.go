package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowmetrics/leadtime/internal/config"
	"github.com/flowmetrics/leadtime/internal/debug"
	"github.com/flowmetrics/leadtime/internal/telemetry"
)

var (
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc

	// now is the reference time for open status intervals.
	now = time.Now
)

func init() {
	// Initialize viper configuration
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	// Add --version flag to root command (same behavior as version subcommand)
	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	rootCmd.AddGroup(&cobra.Group{ID: "reports", Title: "Reports:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Configuration:"})
}

var rootCmd = &cobra.Command{
	Use:   "leadtime",
	Short: "leadtime - time-in-status reports for Jira issues",
	Long: `Reconstructs how long Jira issues spent in each workflow status from their
changelogs and writes one CSV row per issue.

Configuration is read from leadtime.yaml (./, ./.leadtime/, ~/.config/leadtime/)
and LEADTIME_* environment variables. JIRA_URL, JIRA_USERNAME and
JIRA_API_TOKEN are honored as well.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			printVersion()
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupSignalContext()
		applyVerbosityFlags()
		applyViperOverrides(cmd)
		initTelemetry()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdownTelemetry()
		if rootCancel != nil {
			rootCancel()
		}
	},
}

// setupSignalContext creates a context that cancels on SIGINT/SIGTERM so an
// interrupted report stops fetching.
func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyVerbosityFlags propagates --verbose and --quiet to the debug package.
func applyVerbosityFlags() {
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)
}

// applyViperOverrides fills flags that weren't set on the command line from
// config. Priority: flags > config file + env vars > defaults.
func applyViperOverrides(cmd *cobra.Command) {
	if !cmd.Flags().Changed("json") {
		jsonOutput = config.GetBool("json")
	}
	if file := config.ConfigFileUsed(); file != "" {
		debug.Logf("Using config file %s\n", file)
	}
}

func initTelemetry() {
	if err := telemetry.Init(rootCtx, "leadtime", Version); err != nil {
		debug.Logf("telemetry disabled: %v\n", err)
	}
}

var telemetryShutdown = telemetry.Shutdown

func shutdownTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := telemetryShutdown(ctx); err != nil {
		debug.Logf("telemetry shutdown: %v\n", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exit(1)
	}
}
