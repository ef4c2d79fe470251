package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var getCopy bool

func init() {
	pmGetCmd.Flags().BoolVarP(&getCopy, "copy", "c", false, "copy the password to the clipboard instead of printing it")
}

var pmGetCmd = &cobra.Command{
	Use:   "get <label>",
	Short: "Print a stored password",
	Long: `Decrypts and prints the password stored under a label.

Only the password is written to stdout, so it can be piped:
  xpm password-manager get github | wl-copy
  xpm password-manager get github --copy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting get command")

		vault, err := openVaultKey()
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		defer vault.Key.Wipe()

		credential, err := workflows.GetCredential(context.Background(), workflows.GetCredentialOptions{
			VaultOptions: vault,
			Label:        args[0],
		})
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}

		Logger.Debugf("Credential %s last updated %s", credential.ID, credential.UpdatedAt)

		if getCopy {
			if clipboard.Unsupported {
				return fmt.Errorf("no clipboard utility found (install xclip, xsel or wl-clipboard)")
			}
			if err := clipboard.WriteAll(credential.Secret); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			fmt.Println(ui.Done("Copied " + ui.Highlight.Sprint(credential.Label) + " to the clipboard"))
			return nil
		}

		fmt.Println(credential.Secret)
		return nil
	},
}
