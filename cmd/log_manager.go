package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/PolarWolf314/xpm/internal/audit"
	kerrors "github.com/PolarWolf314/xpm/internal/errors"
	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/utils"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logUser      string
	logOperation string
	logLabel     string
	logFailed    bool
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
	logClearYes  bool
)

// LogManagerCmd groups the activity log commands.
var LogManagerCmd = &cobra.Command{
	Use:   "log-manager",
	Short: "View or clear the activity log",
	Long: `Every xpm operation is recorded in an activity log in the xpm data directory.
The log holds labels, paths and counts; it never holds passwords or keys.`,
}

func init() {
	logShowCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logShowCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logShowCmd.Flags().StringVar(&logUser, "user", "", "filter by username")
	logShowCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logShowCmd.Flags().StringVar(&logLabel, "label", "", "filter by credential label")
	logShowCmd.Flags().BoolVar(&logFailed, "failed", false, "show only operations that failed")
	logShowCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logShowCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logShowCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logShowCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")

	logClearCmd.Flags().BoolVarP(&logClearYes, "yes", "y", false, "skip the confirmation code")

	LogManagerCmd.AddCommand(logShowCmd)
	LogManagerCmd.AddCommand(logClearCmd)
}

// resetLogCommandState resets the log commands' global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logUser = ""
	logOperation = ""
	logLabel = ""
	logFailed = false
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
	logClearYes = false
}

var logShowCmd = &cobra.Command{
	Use:   "show",
	Short: "View the activity log",
	Long: `Displays the activity log.

Examples:
  xpm log-manager show                              # View full log
  xpm log-manager show -n 10                        # Last 10 entries
  xpm log-manager show --reverse                    # Most recent first
  xpm log-manager show --operation add,delete       # Filter by operation
  xpm log-manager show --label github               # Filter by label
  xpm log-manager show --failed --since 2026-01-01  # Failures this year
  xpm log-manager show --json                       # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLogShow,
}

func runLogShow(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log show command")

	opts := workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		User:       logUser,
		Operations: logOperation,
		Label:      logLabel,
		Failed:     logFailed,
		Since:      logSince,
		Until:      logUntil,
	}

	result, err := workflows.ReadLog(context.Background(), opts)
	if err != nil {
		fmt.Println(formatLogError(err))
		if errors.Is(err, kerrors.ErrNoFilesFound) {
			return nil
		}
		return &reportedError{err: err}
	}

	Logger.Debugf("Parsed %d entries from activity log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No activity log entries found.")
		} else {
			fmt.Println("No activity log entries found matching the filters.")
		}
		return nil
	}

	if logJSON {
		return outputLogJSON(result.Entries)
	}
	if logOneline {
		outputLogOneline(result.Entries)
		return nil
	}
	outputLogDefault(result.Entries)
	return nil
}

var logClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every activity log entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting log clear command")

		if !logClearYes {
			ok, err := utils.ConfirmCode(os.Stdin, os.Stderr)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println(ui.Warn("Code did not match, the log was kept"))
				return nil
			}
		}

		result, err := workflows.ClearLog(context.Background())
		if err != nil {
			fmt.Println(formatLogError(err))
			return &reportedError{err: err}
		}

		noun := "entries"
		if result.RemovedCount == 1 {
			noun = "entry"
		}
		fmt.Println(ui.Done(fmt.Sprintf("Removed %d activity log %s", result.RemovedCount, noun)))
		return nil
	},
}

// formatLogError formats a log error for display to the user.
func formatLogError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNoFilesFound):
		return ui.Info.Sprint("ℹ") + " No activity log found. Operations will be logged after running any xpm command."

	case errors.Is(err, kerrors.ErrInvalidDateFormat):
		return ui.Fail(err.Error())

	default:
		return ui.Fail("Failed to read activity log: " + err.Error())
	}
}

func outputLogJSON(entries []audit.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputLogOneline(entries []audit.Entry) {
	for _, e := range entries {
		date := workflows.FormatDate(e.Timestamp)
		details := workflows.FormatDetailsOneline(e)
		fmt.Printf("%s %s %s %s\n", date, e.User, e.Operation, details)
	}
}

func outputLogDefault(entries []audit.Entry) {
	for _, e := range entries {
		datetime := workflows.FormatDateTime(e.Timestamp)
		details := workflows.FormatDetails(e)
		fmt.Printf("%-19s  %-16s  %-12s  %s\n", datetime, e.User, e.Operation, details)
	}
}
