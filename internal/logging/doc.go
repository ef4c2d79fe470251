// Package logger provides leveled logging for xpm commands.
//
// Output is prefixed with a colored level tag from fatih/color. Verbosity is
// controlled by the --verbose and --debug flags:
//
//	Logger.Infof()       // Shown with --verbose or --debug
//	Logger.Debugf()      // Shown only with --debug
//	Logger.Warnf()       // Shown with --verbose or --debug
//	Logger.WarnfAlways() // Always shown
//	Logger.Errorf()      // Shown with --debug
//
// Commands create a logger in their PersistentPreRun and pass it down to the
// directory cipher and workflows. Keys, passphrases and secrets are never
// passed to a logger.
package logger
