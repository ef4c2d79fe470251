package cmd

import (
	"fmt"
	"runtime"

	"github.com/PolarWolf314/xpm/internal/utils"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/PolarWolf314/xpm/cmd.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the xpm version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if utils.IsTerminal() {
			banner := figure.NewColorFigure("xpm", "alligator2", "green", true)
			banner.Print()
			fmt.Println()
		}
		fmt.Printf("xpm %s (%s/%s, %s)\n", Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}
