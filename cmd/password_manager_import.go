package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/xpm/internal/configs"
	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/utils"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	importReplace bool
	importDryRun  bool
)

func init() {
	pmImportCmd.Flags().BoolVar(&importReplace, "replace", false, "overwrite the password of labels already in the vault")
	pmImportCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "show what would be imported without changing the vault")
}

var pmImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import credentials from a JSON or KeePass file",
	Long: `Imports credentials into the vault.

Supported inputs:
  *.json   an object of label to password, e.g. {"github": "hunter2"}
  *.kdbx   a KeePass database; every entry's title becomes its label

Labels already in the vault are skipped unless --replace is given. The KeePass
password is prompted for, or read from ` + configs.EnvImportPassword + `.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting import command")

		inputPath, err := utils.ExpandPath(args[0])
		if err != nil {
			return err
		}

		var password string
		if strings.EqualFold(filepath.Ext(inputPath), ".kdbx") {
			password = os.Getenv(configs.EnvImportPassword)
			if password == "" {
				data, err := utils.ReadPassphraseFromTTY("KeePass password: ")
				if err != nil {
					fmt.Println(formatError(err))
					return &reportedError{err: err}
				}
				password = string(data)
			}
		}

		vaultOpts, err := openVaultKey()
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		defer vaultOpts.Key.Wipe()

		spinner, cleanup := startSpinner("Importing credentials...", verbose)
		defer cleanup()

		mode := workflows.ImportModeMerge
		if importReplace {
			mode = workflows.ImportModeReplace
		}
		result, err := workflows.ImportCredentials(context.Background(), workflows.ImportOptions{
			VaultOptions: vaultOpts,
			InputPath:    inputPath,
			Password:     password,
			Mode:         mode,
			DryRun:       importDryRun,
		})
		if err != nil {
			return reportError(spinner, err)
		}

		spinner.FinalMSG = formatImportResult(result)
		return nil
	},
}

func formatImportResult(result *workflows.ImportResult) string {
	var b strings.Builder

	verb, replacedVerb := "Imported", "replaced"
	if result.DryRun {
		verb, replacedVerb = "Would import", "would replace"
	}
	line := fmt.Sprintf("%s %d %s", verb, result.Added, utils.Plural(result.Added, "credential"))
	if result.Replaced > 0 {
		line += fmt.Sprintf(", %s %d", replacedVerb, result.Replaced)
	}
	b.WriteString(ui.Done(line))

	if len(result.Skipped) > 0 {
		b.WriteString(" " + ui.Muted.Sprintf("%d skipped", len(result.Skipped)))
		for _, s := range result.Skipped {
			b.WriteString("\n  " + ui.Muted.Sprint("skipped") + " " + ui.Highlight.Sprint(s.Label) + " " + ui.Muted.Sprint(s.Reason))
		}
		if !importReplace {
			b.WriteString("\n" + ui.Hint("Use "+ui.Flag.Sprint("--replace")+" to overwrite labels already in the vault"))
		}
	}
	return b.String()
}
