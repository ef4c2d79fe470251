package configs

import (
	"log"
	"os"
	"path/filepath"
)

// AppName is the directory name used under the user's data and config dirs.
const AppName = "xpm"

// Settings holds process-wide paths. They are derived from the environment
// once at startup and may be overridden by tests.
type Settings struct {
	DataDir      string
	ConfigDir    string
	VaultPath    string
	AuditLogPath string
	ConfigPath   string
}

// XpmSettings is initialised in init and read by every command.
var XpmSettings *Settings

func init() {
	settings, err := DefaultSettings()
	if err != nil {
		log.Fatalf("error resolving xpm directories: %s", err)
	}
	XpmSettings = settings
}

// DefaultSettings resolves the default directories following XDG conventions:
// data lives under $XDG_DATA_HOME/xpm (or ~/.local/share/xpm) and the config
// file under the OS config dir.
func DefaultSettings() (*Settings, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return NewSettings(filepath.Join(dataDir, AppName), filepath.Join(configDir, AppName)), nil
}

// NewSettings builds the settings for the given data and config directories.
func NewSettings(dataDir, configDir string) *Settings {
	return &Settings{
		DataDir:      dataDir,
		ConfigDir:    configDir,
		VaultPath:    filepath.Join(dataDir, "vault.db"),
		AuditLogPath: filepath.Join(dataDir, "audit.jsonl"),
		ConfigPath:   filepath.Join(configDir, "config.toml"),
	}
}
