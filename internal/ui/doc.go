// Package ui provides semantic text formatting for CLI output.
//
// Formatters render content by meaning (code, paths, labels, secrets)
// rather than by color. When colors are available, content is colorized.
// When NO_COLOR is set or the terminal doesn't support colors, text-based
// decorations (backticks, quotes) are used instead.
//
//	ui.Code.Sprint("xpm encrypt-dir ~/docs") // Commands
//	ui.Path.Sprint("~/docs/report.pdf")      // File paths
//	ui.Highlight.Sprint("github")            // Credential labels
//	ui.Secret.Sprint(password)               // Revealed secrets
//	ui.Done("Credential added")              // ✓ Credential added
//	ui.Fail("Wrong key")                     // ✗ Wrong key
//	ui.Hint("Run xpm --help")                // → Run xpm --help
package ui
