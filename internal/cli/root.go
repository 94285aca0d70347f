package cli

import (
	"log/slog"
	"os"

	"github.com/me/flowplan/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking FLOWPLAN_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("FLOWPLAN_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the flowplan CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "flowplan",
		Short: "FlowPlan — goal planning and work-hours scheduling",
		Long:  "FlowPlan breaks goals into subtasks, schedules them into workday slots, and exports calendars.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "FlowPlan server URL (or FLOWPLAN_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newPlanCmd(),
		newScheduleCmd(),
		newGoalsCmd(),
		newExportCmd(),
		newHealthCmd(),
	)

	return root
}
