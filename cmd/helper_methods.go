package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/PolarWolf314/xpm/internal/configs"
	kerrors "github.com/PolarWolf314/xpm/internal/errors"
	"github.com/PolarWolf314/xpm/internal/secrets"
	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/utils"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// setSpinnerSuffix updates the message of a running spinner.
func setSpinnerSuffix(s *spinner.Spinner, message string) {
	s.Lock()
	s.Suffix = " " + message
	s.Unlock()
}

// obtainKey loads the key from XPM_KEY, stdin with --key-stdin, or a hidden
// prompt, in that order. confirm asks twice when prompting, for keys that are
// about to protect something new.
func obtainKey(confirm bool) (*secrets.Key, error) {
	if input := os.Getenv(configs.EnvKey); input != "" {
		Logger.Debugf("Using key from %s", configs.EnvKey)
		return secrets.LoadOrDeriveKey(input)
	}

	if keyStdin {
		Logger.Debugf("Reading key from stdin")
		data, err := utils.ReadStdin()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", kerrors.ErrKeyUnavailable, err)
		}
		return secrets.LoadOrDeriveKey(string(data))
	}

	if !utils.IsTTYAvailable() {
		return nil, kerrors.ErrKeyUnavailable
	}

	var input []byte
	var err error
	if confirm {
		input, err = utils.ReadNewPassphrase("Enter key or passphrase: ", "Confirm key or passphrase: ")
	} else {
		input, err = utils.ReadPassphraseFromTTY("Enter key or passphrase: ")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrKeyUnavailable, err)
	}
	return secrets.LoadOrDeriveKey(string(input))
}

// openVaultKey obtains the master key, asking for confirmation when the
// vault does not exist yet.
func openVaultKey() (workflows.VaultOptions, error) {
	opts := workflows.VaultOptions{Path: vaultPath}

	path := vaultPath
	if path == "" {
		config, err := configs.LoadConfig()
		if err != nil {
			return opts, err
		}
		path = config.VaultPath()
	}
	_, statErr := os.Stat(path)
	creating := os.IsNotExist(statErr)
	if creating {
		Logger.Infof("Creating new vault at %s", path)
	}

	key, err := obtainKey(creating)
	if err != nil {
		return opts, err
	}
	opts.Key = key
	return opts, nil
}

// reportError sets the spinner's final message for err and marks it as shown.
func reportError(s *spinner.Spinner, err error) error {
	Logger.Errorf("%v", err)
	s.FinalMSG = formatError(err)
	return &reportedError{err: err}
}

// formatError turns an error into a user-facing message with a hint.
func formatError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNotFound):
		return ui.Fail(err.Error()) + "\n" +
			ui.Hint("Run "+ui.Code.Sprint("xpm password-manager list")+" to see stored labels")

	case errors.Is(err, kerrors.ErrDuplicateLabel):
		return ui.Fail(err.Error()) + "\n" +
			ui.Hint("Use "+ui.Code.Sprint("xpm password-manager update")+" to change an existing credential")

	case errors.Is(err, kerrors.ErrKeyUnavailable):
		return ui.Fail("No key was provided") + "\n" +
			ui.Hint("Set "+ui.Flag.Sprint(configs.EnvKey)+", pass "+ui.Flag.Sprint("--key-stdin")+", or run in a terminal")

	case errors.Is(err, kerrors.ErrDecrypt):
		return ui.Fail("Wrong key, or the data has been tampered with") + "\n" +
			ui.Muted.Sprint(err.Error())

	case errors.Is(err, kerrors.ErrVaultUnavailable):
		return ui.Fail("Could not open the vault") + "\n" +
			ui.Muted.Sprint(err.Error())

	case errors.Is(err, kerrors.ErrNoFilesFound):
		return ui.Warn("No files to process") + " " + ui.Muted.Sprint(err.Error())

	case errors.Is(err, kerrors.ErrAlreadyInTargetState):
		return ui.Fail(err.Error()) + "\n" +
			ui.Hint("Nothing was changed")

	default:
		return ui.Fail(err.Error())
	}
}

// formatSummary renders a directory or multi-file result.
func formatSummary(action string, summary secrets.Summary) string {
	var b strings.Builder

	if summary.Failed == 0 {
		b.WriteString(ui.Done(fmt.Sprintf("%s %d %s", action, summary.Succeeded, utils.Plural(summary.Succeeded, "file"))))
	} else {
		b.WriteString(ui.Warn(fmt.Sprintf("%s %d of %d %s", action, summary.Succeeded, summary.Total, utils.Plural(summary.Total, "file"))))
	}
	if summary.Skipped > 0 {
		b.WriteString(" " + ui.Muted.Sprintf("%d skipped", summary.Skipped))
	}
	b.WriteString("\n")

	for _, f := range summary.Failures {
		b.WriteString("  " + ui.Error.Sprint("✗") + " " + ui.Path.Sprint(f.Path) + ": " + f.Reason + "\n")
	}

	if verbose || debug {
		for _, s := range summary.Skips {
			b.WriteString("  " + ui.Muted.Sprint("skipped") + " " + ui.Path.Sprint(s.Path) + " " + ui.Muted.Sprint(s.Reason) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
