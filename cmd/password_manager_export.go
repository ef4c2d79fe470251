package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/xpm/internal/configs"
	kerrors "github.com/PolarWolf314/xpm/internal/errors"
	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/utils"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/spf13/cobra"
)

var exportForce bool

func init() {
	pmExportCmd.Flags().BoolVarP(&exportForce, "force", "f", false, "overwrite the output file if it exists")
}

var pmExportCmd = &cobra.Command{
	Use:   "export <file.kdbx>",
	Short: "Export the vault to a KeePass database",
	Long: `Writes every credential to a KeePass (KDBX 4) file protected by its own
password, so the vault can be opened in KeePassXC and similar managers.

The export password is prompted for, or read from ` + configs.EnvExportPassword + `.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting export command")

		outputPath, err := utils.ExpandPath(args[0])
		if err != nil {
			return err
		}

		if _, err := os.Stat(outputPath); err == nil && !exportForce {
			err := fmt.Errorf("%s already exists (use --force to overwrite): %w", outputPath, kerrors.ErrIO)
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}

		password := os.Getenv(configs.EnvExportPassword)
		if password == "" {
			data, err := utils.ReadNewPassphrase("Export password: ", "Confirm export password: ")
			if err != nil {
				fmt.Println(formatError(err))
				return &reportedError{err: err}
			}
			password = string(data)
		}

		vaultOpts, err := openVaultKey()
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		defer vaultOpts.Key.Wipe()

		spinner, cleanup := startSpinner("Exporting credentials...", verbose)
		defer cleanup()

		result, err := workflows.ExportKeePass(context.Background(), workflows.ExportKeePassOptions{
			VaultOptions: vaultOpts,
			OutputPath:   outputPath,
			Password:     password,
		})
		if err != nil {
			return reportError(spinner, err)
		}

		spinner.FinalMSG = ui.Done(fmt.Sprintf("Exported %d %s to %s", result.Count, utils.Plural(result.Count, "credential"), ui.Path.Sprint(result.OutputPath))) + "\n" +
			ui.Warn("The export holds every password; delete it once it has been imported")
		return nil
	},
}
