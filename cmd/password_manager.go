package cmd

import (
	"github.com/spf13/cobra"
)

// PasswordManagerCmd groups the credential vault commands.
var PasswordManagerCmd = &cobra.Command{
	Use:     "password-manager",
	Aliases: []string{"pm"},
	Short:   "Store and retrieve passwords in the encrypted vault",
	Long: `Manages credentials in the local vault.

Secrets are encrypted with your master key before they are written; labels
and timestamps are stored in plain text so they can be listed without a
decryption pass.`,
}

func init() {
	PasswordManagerCmd.AddCommand(pmAddCmd)
	PasswordManagerCmd.AddCommand(pmGetCmd)
	PasswordManagerCmd.AddCommand(pmUpdateCmd)
	PasswordManagerCmd.AddCommand(pmDeleteCmd)
	PasswordManagerCmd.AddCommand(pmListCmd)
	PasswordManagerCmd.AddCommand(pmFindCmd)
	PasswordManagerCmd.AddCommand(pmCountCmd)
	PasswordManagerCmd.AddCommand(pmExportCmd)
	PasswordManagerCmd.AddCommand(pmImportCmd)
	PasswordManagerCmd.AddCommand(pmBackupCmd)
}

func resetPasswordManagerCommandState() {
	addGenerate = false
	addSecretStdin = false
	getCopy = false
	updateRename = ""
	updateRegenerate = false
	updatePrompt = false
	deleteYes = false
	listJSON = false
	exportForce = false
	importReplace = false
	importDryRun = false
}
