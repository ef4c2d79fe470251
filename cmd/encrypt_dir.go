package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/PolarWolf314/xpm/internal/secrets"
	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/utils"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	dirSequential bool
	dirWorkers    int
	dirExclude    []string
)

func init() {
	for _, c := range []*cobra.Command{encryptDirCmd, decryptDirCmd} {
		c.Flags().BoolVar(&dirSequential, "sequential", false, "process one file at a time in directory order")
		c.Flags().IntVarP(&dirWorkers, "workers", "w", 0, "number of parallel workers (default: config, or one per CPU)")
		c.Flags().StringSliceVarP(&dirExclude, "exclude", "e", nil, "glob relative to the directory to leave alone, e.g. \"**/.git/**\" (repeatable)")
		c.Flags().BoolVarP(&fileSuffix, "suffix", "s", false, "write <file>"+secrets.EncryptedSuffix+" alongside instead of replacing each file")
		c.Flags().BoolVar(&fileDelete, "delete", false, "with --suffix, wipe and remove each source once its output is written")
	}
	encryptDirCmd.Flags().BoolVar(&fileGenerateKey, "generate-key", false, "encrypt with a new random key and print it")
}

func resetDirCommandState() {
	dirSequential = false
	dirWorkers = 0
	dirExclude = nil
}

var encryptDirCmd = &cobra.Command{
	Use:   "encrypt-dir <directory>",
	Short: "Encrypt every file under a directory",
	Long: `Encrypts every regular file under a directory, in parallel by default.

A file that fails is reported and the rest carry on. The vault and the
activity log are never touched, even when they live inside the directory.
Press Ctrl-C to stop; files already being written finish cleanly.

Examples:
  xpm encrypt-dir ~/Documents/private
  xpm encrypt-dir photos --suffix --delete --exclude "**/*.tmp"
  xpm encrypt-dir big-tree --workers 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDirCommand(args[0], secrets.Encrypt)
	},
}

var decryptDirCmd = &cobra.Command{
	Use:   "decrypt-dir <directory>",
	Short: "Decrypt every file under a directory",
	Long: `Decrypts every encrypted file under a directory. Files that are not
encrypted are reported as failures and left unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDirCommand(args[0], secrets.Decrypt)
	},
}

func runDirCommand(dir string, mode secrets.Mode) error {
	Logger.Infof("Starting %s-dir command", mode)

	root, err := utils.ExpandPath(dir)
	if err != nil {
		return err
	}

	key, keyText, err := fileKey(mode)
	if err != nil {
		fmt.Println(formatError(err))
		return &reportedError{err: err}
	}
	defer key.Wipe()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	action, done := "Encrypting", "Encrypted"
	if mode == secrets.Decrypt {
		action, done = "Decrypting", "Decrypted"
	}
	spinner, cleanup := startSpinner(action+" "+root+"...", verbose)
	defer cleanup()

	processed := 0
	opts := workflows.DirOptions{
		Key:        key,
		Root:       root,
		VaultPath:  vaultPath,
		Workers:    dirWorkers,
		Sequential: dirSequential,
		Exclude:    dirExclude,
		Suffix:     fileSuffix,
		Delete:     fileDelete,
		Logger:     Logger,
		Progress: func(secrets.Outcome) {
			processed++
			setSpinnerSuffix(spinner, fmt.Sprintf("%s %s... %d done", action, root, processed))
		},
	}

	var summary *secrets.Summary
	if mode == secrets.Encrypt {
		summary, err = workflows.EncryptDir(ctx, opts)
	} else {
		summary, err = workflows.DecryptDir(ctx, opts)
	}

	keyNotice := ""
	if keyText != "" {
		keyNotice = "\nYour new key:\n" + ui.Secret.Sprint(keyText) + "\n" +
			ui.Warn("Store it safely; the files cannot be decrypted without it")
	}

	if err != nil && (summary == nil || summary.Total == 0) {
		spinner.FinalMSG = formatError(err) + keyNotice
		return &reportedError{err: err}
	}

	finalMessage := formatSummary(done, *summary)
	if errors.Is(err, context.Canceled) {
		finalMessage = ui.Warn("Interrupted; files not yet started were left unchanged") + "\n" + finalMessage
	}
	spinner.FinalMSG = finalMessage + keyNotice

	if err != nil {
		return &reportedError{err: err}
	}
	return nil
}
