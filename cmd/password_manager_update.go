package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/utils"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	updateRename     string
	updateRegenerate bool
	updatePrompt     bool
)

func init() {
	pmUpdateCmd.Flags().StringVar(&updateRename, "rename", "", "give the credential a new label")
	pmUpdateCmd.Flags().BoolVarP(&updateRegenerate, "generate", "g", false, "replace the password with a generated one")
	pmUpdateCmd.Flags().BoolVar(&updatePrompt, "password", false, "prompt for a new password")
	addGenerateFlags(pmUpdateCmd)
	pmUpdateCmd.MarkFlagsMutuallyExclusive("generate", "password")
}

var pmUpdateCmd = &cobra.Command{
	Use:   "update <label>",
	Short: "Change a credential's password or label",
	Long: `Changes the password, the label, or both, in a single transaction.

Examples:
  xpm password-manager update github --generate
  xpm password-manager update github --password
  xpm password-manager update github --rename github-work`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting update command")

		opts := workflows.UpdateCredentialOptions{
			Label:      args[0],
			NewLabel:   updateRename,
			Regenerate: updateRegenerate,
			Generate:   generateOptions(),
		}

		if updatePrompt {
			secret, err := utils.ReadNewPassphrase("New password: ", "Confirm new password: ")
			if err != nil {
				fmt.Println(formatError(err))
				return &reportedError{err: err}
			}
			opts.Secret = string(secret)
		}

		vault, err := openVaultKey()
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		defer vault.Key.Wipe()
		opts.VaultOptions = vault

		spinner, cleanup := startSpinner("Updating credential...", verbose)
		defer cleanup()

		result, err := workflows.UpdateCredential(context.Background(), opts)
		if err != nil {
			return reportError(spinner, err)
		}

		finalMessage := ui.Done("Updated " + ui.Highlight.Sprint(result.Label))
		if updateRename != "" {
			finalMessage += " " + ui.Muted.Sprint("was "+args[0])
		}
		if result.Secret != "" {
			finalMessage += "\nGenerated password:\n" + ui.Secret.Sprint(result.Secret)
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
