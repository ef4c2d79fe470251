package cmd

import (
	"context"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/xpm/internal/errors"
	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/utils"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	addGenerate    bool
	addSecretStdin bool
)

func init() {
	pmAddCmd.Flags().BoolVarP(&addGenerate, "generate", "g", false, "generate the password instead of prompting for it")
	pmAddCmd.Flags().BoolVar(&addSecretStdin, "secret-stdin", false, "read the password from stdin")
	addGenerateFlags(pmAddCmd)
}

var pmAddCmd = &cobra.Command{
	Use:   "add <label>",
	Short: "Store a new credential",
	Long: `Stores a credential under a unique label.

The password is prompted for without echo. Leave the prompt empty, or pass
--generate, to store a generated password instead; it is printed once.

Examples:
  xpm password-manager add github
  xpm password-manager add bank --generate --length 40
  echo -n "hunter2" | xpm password-manager add legacy --secret-stdin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting add command")
		label := args[0]

		secret, err := readNewSecret(addGenerate, addSecretStdin)
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}

		vault, err := openVaultKey()
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		defer vault.Key.Wipe()

		spinner, cleanup := startSpinner("Storing credential...", verbose)
		defer cleanup()

		result, err := workflows.AddCredential(context.Background(), workflows.AddCredentialOptions{
			VaultOptions: vault,
			Label:        label,
			Secret:       secret,
			Generate:     generateOptions(),
		})
		if err != nil {
			return reportError(spinner, err)
		}

		Logger.Infof("Stored credential %s", result.ID)
		finalMessage := ui.Done("Stored " + ui.Highlight.Sprint(strings.TrimSpace(label)))
		if result.Secret != "" {
			finalMessage += "\nGenerated password:\n" + ui.Secret.Sprint(result.Secret)
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}

// readNewSecret returns the secret to store, or "" to have one generated.
func readNewSecret(generate, fromStdin bool) (string, error) {
	switch {
	case generate:
		return "", nil
	case fromStdin:
		if keyStdin {
			return "", fmt.Errorf("%w: --secret-stdin and --key-stdin cannot both read stdin", kerrors.ErrKeyUnavailable)
		}
		data, err := utils.ReadStdin()
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	case utils.IsTTYAvailable():
		data, err := utils.ReadPassphraseFromTTY("Password (leave empty to generate): ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", nil
	}
}
