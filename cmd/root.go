package cmd

import (
	"errors"

	logger "github.com/PolarWolf314/xpm/internal/logging"
	"github.com/PolarWolf314/xpm/internal/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose   bool
	debug     bool
	keyStdin  bool
	vaultPath string
	Logger    logger.Logger
)

// BindGlobalFlags registers the flags shared by every command.
func BindGlobalFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug output")
	flags.BoolVar(&keyStdin, "key-stdin", false, "read the key or passphrase from stdin instead of XPM_KEY or a prompt")
	flags.StringVar(&vaultPath, "vault", "", "path to the vault database (default from config or XPM_VAULT)")
}

// PersistentPreRun builds the logger from the global flags.
func PersistentPreRun(cmd *cobra.Command, args []string) {
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}
	Logger.Debugf("Running %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)

	if vaultPath != "" {
		if expanded, err := utils.ExpandPath(vaultPath); err == nil {
			vaultPath = expanded
		}
	}
}

// Commands returns every top-level xpm command.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		generateCmd,
		PasswordManagerCmd,
		encryptFileCmd,
		decryptFileCmd,
		encryptDirCmd,
		decryptDirCmd,
		LogManagerCmd,
		ConfigCmd,
		encodeCmd,
		decodeCmd,
		versionCmd,
	}
}

// reportedError marks an error whose message was already shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already printed by the command that
// returned it, so main only needs to pick the exit code.
func IsReported(err error) bool {
	var reported *reportedError
	return errors.As(err, &reported)
}

// Helper functions for testing

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	keyStdin = false
	vaultPath = ""
	resetGenerateCommandState()
	resetPasswordManagerCommandState()
	resetFileCommandState()
	resetDirCommandState()
	resetLogCommandState()
	resetConfigCommandState()
	resetCodecCommandState()
}
