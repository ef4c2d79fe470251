package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/utils"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/spf13/cobra"
)

var deleteYes bool

func init() {
	pmDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation code")
}

var pmDeleteCmd = &cobra.Command{
	Use:   "delete <label>",
	Short: "Remove a credential from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting delete command")
		label := args[0]

		vault, err := openVaultKey()
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		defer vault.Key.Wipe()

		if !deleteYes {
			ok, err := utils.ConfirmCode(os.Stdin, os.Stderr)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println(ui.Warn("Code did not match, nothing was deleted"))
				return nil
			}
		}

		spinner, cleanup := startSpinner("Deleting credential...", verbose)
		defer cleanup()

		err = workflows.DeleteCredential(context.Background(), workflows.DeleteCredentialOptions{
			VaultOptions: vault,
			Label:        label,
		})
		if err != nil {
			return reportError(spinner, err)
		}

		spinner.FinalMSG = ui.Done("Deleted " + ui.Highlight.Sprint(label))
		return nil
	},
}
