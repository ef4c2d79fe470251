package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/xpm/internal/secrets"
	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/utils"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	fileSuffix      bool
	fileDelete      bool
	fileGenerateKey bool
)

func init() {
	for _, c := range []*cobra.Command{encryptFileCmd, decryptFileCmd} {
		c.Flags().BoolVarP(&fileSuffix, "suffix", "s", false, "write <file>"+secrets.EncryptedSuffix+" alongside instead of replacing the file")
		c.Flags().BoolVar(&fileDelete, "delete", false, "with --suffix, wipe and remove the source once the output is written")
	}
	encryptFileCmd.Flags().BoolVar(&fileGenerateKey, "generate-key", false, "encrypt with a new random key and print it")
}

func resetFileCommandState() {
	fileSuffix = false
	fileDelete = false
	fileGenerateKey = false
}

var encryptFileCmd = &cobra.Command{
	Use:   "encrypt-file <file>...",
	Short: "Encrypt one or more files",
	Long: `Encrypts files with your key. Files are replaced in place unless --suffix
is given. Paths may be globs such as "notes/*.md".

Examples:
  xpm encrypt-file taxes.pdf
  xpm encrypt-file --suffix --delete "photos/**/*.jpg"
  xpm encrypt-file --generate-key backup.tar`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFileCommand(args, secrets.Encrypt)
	},
}

var decryptFileCmd = &cobra.Command{
	Use:   "decrypt-file <file>...",
	Short: "Decrypt one or more files",
	Long: `Decrypts files encrypted by encrypt-file or encrypt-dir. With --suffix only
files ending in ` + secrets.EncryptedSuffix + ` are accepted and the suffix is removed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFileCommand(args, secrets.Decrypt)
	},
}

func runFileCommand(args []string, mode secrets.Mode) error {
	Logger.Infof("Starting %s-file command", mode)

	key, keyText, err := fileKey(mode)
	if err != nil {
		fmt.Println(formatError(err))
		return &reportedError{err: err}
	}
	defer key.Wipe()

	if fileDelete && !fileSuffix {
		Logger.WarnfAlways("--delete only applies with --suffix; in-place files are already replaced")
	}

	action := "Encrypting"
	done := "Encrypted"
	if mode == secrets.Decrypt {
		action, done = "Decrypting", "Decrypted"
	}
	spinner, cleanup := startSpinner(action+" files...", verbose)
	defer cleanup()

	opts := workflows.FileOptions{Key: key, Paths: args, Suffix: fileSuffix, Delete: fileDelete}
	var result *workflows.FileResult
	if mode == secrets.Encrypt {
		result, err = workflows.EncryptFile(context.Background(), opts)
	} else {
		result, err = workflows.DecryptFile(context.Background(), opts)
	}

	keyNotice := ""
	if keyText != "" {
		keyNotice = "\nYour new key:\n" + ui.Secret.Sprint(keyText) + "\n" +
			ui.Warn("Store it safely; the files cannot be decrypted without it")
	}

	if err != nil && (result == nil || len(result.Outcomes) <= 1) {
		spinner.FinalMSG = formatError(err) + keyNotice
		return &reportedError{err: err}
	}

	var written []string
	for _, o := range result.Outcomes {
		if o.Succeeded() {
			written = append(written, o.Destination)
		}
	}

	finalMessage := formatSummary(done, result.Summary)
	if len(written) > 0 && (verbose || fileSuffix) {
		finalMessage += "\nWritten:" + utils.FormatPaths(written)
	}
	spinner.FinalMSG = finalMessage + keyNotice

	if err != nil {
		return &reportedError{err: err}
	}
	return nil
}

// fileKey returns the key for a file or directory command. With
// --generate-key a fresh key is made and its text form returned for display.
func fileKey(mode secrets.Mode) (*secrets.Key, string, error) {
	if fileGenerateKey && mode == secrets.Encrypt {
		Logger.Infof("Generating a new key")
		return secrets.GenerateKey()
	}
	key, err := obtainKey(mode == secrets.Encrypt)
	return key, "", err
}
