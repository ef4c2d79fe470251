package configs

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Environment variables that override the config file.
const (
	EnvKey     = "XPM_KEY"
	EnvVault   = "XPM_VAULT"
	EnvWorkers = "XPM_WORKERS"

	// EnvExportPassword protects KeePass exports without a prompt.
	EnvExportPassword = "XPM_EXPORT_PASSWORD"

	// EnvImportPassword unlocks KeePass imports without a prompt.
	EnvImportPassword = "XPM_IMPORT_PASSWORD"
)

// Config is the user's config.toml.
type Config struct {
	Vault     VaultConfig    `toml:"vault"`
	Crypto    CryptoConfig   `toml:"crypto"`
	Passwords PasswordConfig `toml:"passwords"`
	Encrypt   EncryptConfig  `toml:"encrypt"`
}

type VaultConfig struct {
	// Path overrides the default vault location.
	Path string `toml:"path,omitempty"`
}

type CryptoConfig struct {
	// Workers is the directory worker pool size; 0 means one per CPU.
	Workers    int  `toml:"workers,omitempty"`
	Sequential bool `toml:"sequential,omitempty"`
}

type PasswordConfig struct {
	Length    int      `toml:"length,omitempty"`
	MaxLength int      `toml:"max_length,omitempty"`
	Classes   []string `toml:"classes,omitempty"`
}

type EncryptConfig struct {
	// Exclude holds doublestar patterns, relative to the directory being processed.
	Exclude []string `toml:"exclude,omitempty"`
}

// DefaultMaxPasswordLength bounds generated passwords when the config does not.
const DefaultMaxPasswordLength = 1024

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Passwords: PasswordConfig{
			MaxLength: DefaultMaxPasswordLength,
			Classes:   []string{"lowercase", "uppercase", "digits", "symbols"},
		},
	}
}

// LoadConfig reads the config file from XpmSettings.ConfigPath, falling back to
// defaults when it does not exist, then applies environment overrides.
func LoadConfig() (*Config, error) {
	config, err := LoadConfigFile()
	if err != nil {
		return nil, err
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigFile reads only the config file, without environment overrides,
// so the result can be edited and saved back.
func LoadConfigFile() (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(XpmSettings.ConfigPath); err == nil {
		if err := LoadTOML(XpmSettings.ConfigPath, config); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	if config.Passwords.MaxLength <= 0 {
		config.Passwords.MaxLength = DefaultMaxPasswordLength
	}
	return config, nil
}

// SaveConfig writes the config file to XpmSettings.ConfigPath.
func SaveConfig(config *Config) error {
	if err := SaveTOML(XpmSettings.ConfigPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func applyEnv(config *Config) error {
	if v := os.Getenv(EnvVault); v != "" {
		config.Vault.Path = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s value %q", EnvWorkers, v)
		}
		config.Crypto.Workers = n
	}
	return nil
}

// VaultPath returns the vault database path, honouring the config override.
func (c *Config) VaultPath() string {
	if c.Vault.Path != "" {
		return c.Vault.Path
	}
	return XpmSettings.VaultPath
}

// WorkerCount returns the configured worker pool size, defaulting to the CPU count.
func (c *Config) WorkerCount() int {
	if c.Crypto.Workers > 0 {
		return c.Crypto.Workers
	}
	return runtime.NumCPU()
}
