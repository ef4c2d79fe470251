package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...any) string {
	return f.wrap(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...any) string {
	return f.wrap(fmt.Sprintf(format, a...))
}

func (f Formatter) wrap(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// EnsureNewline ensures the string ends with a newline character.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// noColor reports whether NO_COLOR is set or fatih/color detected a
// terminal without color support.
func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

// Semantic formatters for different types of CLI output.
var (
	// Code formats runnable commands, e.g. `xpm encrypt-dir`.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats file or directory paths.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Flag formats CLI flags like --workers.
	Flag = Formatter{color.New(color.FgYellow), "", ""}

	Success = Formatter{color.New(color.FgGreen), "", ""}
	Error   = Formatter{color.New(color.FgRed), "", ""}
	Warning = Formatter{color.New(color.FgYellow), "", ""}
	Info    = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight formats credential labels and other user-chosen values.
	// Cyan with color, 'single quotes' without.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Muted formats de-emphasized text such as timestamps.
	// Gray with color, (parentheses) without.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}

	// Secret formats a revealed password or key so it stands out on its
	// own line. Without color it is printed bare, ready to copy.
	Secret = Formatter{color.New(color.Bold), "", ""}
)

// Done prefixes msg with a success mark.
func Done(msg string) string {
	return Success.Sprint("✓") + " " + msg
}

// Fail prefixes msg with a failure mark.
func Fail(msg string) string {
	return Error.Sprint("✗") + " " + msg
}

// Hint prefixes msg with an arrow for follow-up suggestions.
func Hint(msg string) string {
	return Info.Sprint("→") + " " + msg
}

// Warn prefixes msg with a warning mark.
func Warn(msg string) string {
	return Warning.Sprint("⚠") + " " + msg
}
