package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PolarWolf314/xpm/internal/configs"
	"github.com/PolarWolf314/xpm/internal/ui"
	"github.com/PolarWolf314/xpm/internal/workflows"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

var configForce bool

// ConfigCmd groups the config.toml commands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change xpm settings",
	Long: `Manages config.toml. Environment variables (` + configs.EnvVault + `, ` + configs.EnvWorkers + `)
override the file at run time and are never written to it.`,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")

	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configSetCmd)
}

func resetConfigCommandState() {
	configForce = false
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config init command")

		result, err := workflows.InitConfig(context.Background(), configForce)
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		fmt.Println(ui.Done("Wrote " + ui.Path.Sprint(result.Path)))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := workflows.ShowConfig(context.Background())
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}

		header := "# " + result.Path
		if !result.Exists {
			header += " (not created yet; showing defaults)"
		}
		fmt.Println(ui.Muted.Sprint(header))
		return toml.NewEncoder(os.Stdout).Encode(result.Config)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Validates and saves one setting. List settings take comma-separated values,
and an empty value clears a setting.

Keys: ` + strings.Join(workflows.ConfigKeys(), ", ") + `

Examples:
  xpm config set crypto.workers 4
  xpm config set passwords.classes lowercase,digits
  xpm config set encrypt.exclude "**/.git/**,**/node_modules/**"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config set command")

		result, err := workflows.SetConfigValue(context.Background(), args[0], args[1])
		if err != nil {
			fmt.Println(formatError(err))
			return &reportedError{err: err}
		}
		fmt.Println(ui.Done(fmt.Sprintf("Set %s in %s", ui.Highlight.Sprint(args[0]), ui.Path.Sprint(result.Path))))
		return nil
	},
}
