package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/xpm/cmd"
	kerrors "github.com/PolarWolf314/xpm/internal/errors"
	"github.com/PolarWolf314/xpm/internal/ui"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xpm",
	Short: "xpm - a local password vault and file encryption tool.",
	Long: `xpm keeps your passwords in an encrypted local vault and encrypts
files and whole directories with a key only you hold.

Features:
  - Generate strong passwords
  - Store and retrieve credentials in an encrypted SQLite vault
  - Encrypt files and directory trees, in parallel
  - Export the vault to KeePass

Usage:
  xpm <command> [flags]

The key is read from XPM_KEY, from stdin with --key-stdin, or prompted for.
A key is either the base64 text printed by --generate-key or any passphrase.

Run 'xpm help <command>' for more details on a specific command.
`,
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRun: cmd.PersistentPreRun,
}

func init() {
	cmd.BindGlobalFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(cmd.Commands()...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !cmd.IsReported(err) {
			fmt.Fprintln(os.Stderr, ui.Fail(err.Error()))
		}
		os.Exit(kerrors.ExitCode(err))
	}
}
