package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/utils"
	"github.com/PolarWolf314/xpm/internal/vault"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listJSON bool

func init() {
	pmListCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON array")
	pmFindCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON array")
}

var pmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored labels",
	Long:  `Lists every credential label with when it was created and last changed. Passwords are never shown.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting list command")

		vaultOpts, err := openVaultKey()
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		defer vaultOpts.Key.Wipe()

		summaries, err := workflows.ListCredentials(context.Background(), vaultOpts)
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}

		if len(summaries) == 0 && !listJSON {
			fmt.Println(ui.Hint("The vault is empty. Add a credential with " + ui.Code.Sprint("xpm password-manager add <label>")))
			return nil
		}
		return printSummaries(summaries)
	},
}

var pmFindCmd = &cobra.Command{
	Use:   "find <text>",
	Short: "List labels containing text, ignoring case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting find command")

		vaultOpts, err := openVaultKey()
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		defer vaultOpts.Key.Wipe()

		summaries, err := workflows.FindCredentials(context.Background(), vaultOpts, args[0])
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}

		if len(summaries) == 0 && !listJSON {
			fmt.Println("No labels match " + ui.Highlight.Sprint(args[0]) + ".")
			return nil
		}
		return printSummaries(summaries)
	},
}

var pmCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print how many credentials are stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultOpts, err := openVaultKey()
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		defer vaultOpts.Key.Wipe()

		n, err := workflows.CountCredentials(context.Background(), vaultOpts)
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}

		fmt.Printf("%d %s\n", n, utils.Plural(n, "credential"))
		return nil
	},
}

type summaryJSON struct {
	Label     string `json:"label"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func printSummaries(summaries []vault.Summary) error {
	if listJSON {
		out := make([]summaryJSON, 0, len(summaries))
		for _, s := range summaries {
			out = append(out, summaryJSON{
				Label:     s.Label,
				CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				UpdatedAt: s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal credentials to JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	width := 5
	for _, s := range summaries {
		width = max(width, len(s.Label))
	}
	for _, s := range summaries {
		fmt.Printf("%-*s  %s\n", width, s.Label, ui.Muted.Sprint("updated "+humanize.Time(s.UpdatedAt)))
	}
	return nil
}
