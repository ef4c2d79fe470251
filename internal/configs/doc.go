// Package configs resolves xpm's directories and loads the user config file.
//
// # Settings
//
// XpmSettings holds the data and config directories, computed once at
// startup:
//
//   - Data: $XDG_DATA_HOME/xpm or ~/.local/share/xpm (vault.db, audit.jsonl)
//   - Config: <os.UserConfigDir>/xpm/config.toml
//
// Tests replace XpmSettings with NewSettings(t.TempDir(), t.TempDir()).
//
// # Config File
//
// The optional config.toml sets the vault path, the worker pool size, the
// default password policy and directory exclude patterns:
//
//	[vault]
//	path = "/home/me/secure/vault.db"
//
//	[crypto]
//	workers = 4
//
//	[passwords]
//	length = 24
//	classes = ["lowercase", "uppercase", "digits"]
//
//	[encrypt]
//	exclude = ["**/.git/**", "node_modules/**"]
//
// XPM_VAULT and XPM_WORKERS override the file.
package configs
