package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	generateLength  int
	generateClasses []string
	generatePreset  string
)

// addGenerateFlags registers the password policy flags on cmd, bound to the
// shared generate variables.
func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&generateLength, "length", "l", 0, "password length (default: config, or random between 32 and 72)")
	cmd.Flags().StringSliceVarP(&generateClasses, "classes", "c", nil, "character classes: lowercase, uppercase, digits, symbols, hex")
	cmd.Flags().StringVarP(&generatePreset, "preset", "p", "", "class preset: ascii, nosymbols, hex")
}

func generateOptions() workflows.GenerateOptions {
	return workflows.GenerateOptions{
		Length:  generateLength,
		Classes: generateClasses,
		Preset:  generatePreset,
	}
}

func init() {
	addGenerateFlags(generateCmd)
}

func resetGenerateCommandState() {
	generateLength = 0
	generateClasses = nil
	generatePreset = ""
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random password without storing it",
	Long: `Generates a password from a cryptographically secure source.

Every requested character class appears at least once when the length allows it.

Examples:
  xpm generate                          # Random length, all classes
  xpm generate -l 24 --preset nosymbols # Letters and digits only
  xpm generate -l 16 -c lowercase,digits`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting generate command")

		result, err := workflows.GeneratePassword(context.Background(), generateOptions())
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}

		Logger.Infof("Generated a %d character password from %d classes", result.Length, len(result.Classes))
		fmt.Println(ui.Secret.Sprint(result.Password))
		return nil
	},
}
