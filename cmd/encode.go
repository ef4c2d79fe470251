package cmd

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/xpm/internal/codec"
	"github.com/PolarWolf314/xpm/internal/ui"

	"github.com/spf13/cobra"
)

var codecFormat string

func init() {
	for _, c := range []*cobra.Command{encodeCmd, decodeCmd} {
		c.Flags().StringVarP(&codecFormat, "format", "f", string(codec.Binary), "encoding: binary, hex, base64")
	}
}

func resetCodecCommandState() {
	codecFormat = string(codec.Binary)
}

var encodeCmd = &cobra.Command{
	Use:   "encode <text>...",
	Short: "Encode text as binary, hex or base64",
	Long: `Encodes text into a printable representation. This is not encryption;
anyone can decode the output.

Examples:
  xpm encode xpm               # 01111000 01110000 01101101
  xpm encode -f hex "a phrase"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCodecCommand(strings.Join(args, " "), codec.Encode, "The encoded text")
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode <encoded>...",
	Short: "Decode text produced by encode",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCodecCommand(strings.Join(args, " "), codec.Decode, "The decoded text")
	},
}

func runCodecCommand(input string, convert func(string, codec.Format) (string, error), title string) error {
	format, err := codec.ParseFormat(codecFormat)
	if err == nil {
		var out string
		if out, err = convert(input, format); err == nil {
			fmt.Println(ui.Success.Sprint(title + ":"))
			fmt.Println(out)
			return nil
		}
	}
	fmt.Println(formatError(err))
	return &reportedError{err: err}
}
