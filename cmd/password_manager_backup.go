package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/utils"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/spf13/cobra"
)

var pmBackupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Copy the vault to a backup file",
	Long: `Writes a consistent copy of the vault database to a new file. The copy stays
encrypted and opens with the same key, e.g. with --vault <file>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting backup command")

		outputPath, err := utils.ExpandPath(args[0])
		if err != nil {
			return err
		}

		vaultOpts, err := openVaultKey()
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		defer vaultOpts.Key.Wipe()

		spinner, cleanup := startSpinner("Backing up the vault...", verbose)
		defer cleanup()

		result, err := workflows.BackupVault(context.Background(), workflows.BackupOptions{
			VaultOptions: vaultOpts,
			OutputPath:   outputPath,
		})
		if err != nil {
			return reportError(spinner, err)
		}

		spinner.FinalMSG = ui.Done(fmt.Sprintf("Backed up %d %s to %s", result.Count, utils.Plural(result.Count, "credential"), ui.Path.Sprint(result.OutputPath)))
		return nil
	},
}
