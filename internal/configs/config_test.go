package configs

import (
	"path/filepath"
	"runtime"
	"testing"
)

func withTempSettings(t *testing.T) *Settings {
	t.Helper()
	original := XpmSettings
	XpmSettings = NewSettings(t.TempDir(), t.TempDir())
	t.Cleanup(func() { XpmSettings = original })
	return XpmSettings
}

func TestNewSettingsPaths(t *testing.T) {
	s := NewSettings("/data/xpm", "/config/xpm")

	if s.VaultPath != filepath.Join("/data/xpm", "vault.db") {
		t.Errorf("unexpected vault path: %s", s.VaultPath)
	}
	if s.AuditLogPath != filepath.Join("/data/xpm", "audit.jsonl") {
		t.Errorf("unexpected audit path: %s", s.AuditLogPath)
	}
	if s.ConfigPath != filepath.Join("/config/xpm", "config.toml") {
		t.Errorf("unexpected config path: %s", s.ConfigPath)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	settings := withTempSettings(t)
	t.Setenv(EnvVault, "")
	t.Setenv(EnvWorkers, "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.VaultPath() != settings.VaultPath {
		t.Errorf("Expected default vault path %s, got %s", settings.VaultPath, config.VaultPath())
	}
	if config.WorkerCount() != runtime.NumCPU() {
		t.Errorf("Expected %d workers, got %d", runtime.NumCPU(), config.WorkerCount())
	}
	if config.Passwords.MaxLength != DefaultMaxPasswordLength {
		t.Errorf("Expected max length %d, got %d", DefaultMaxPasswordLength, config.Passwords.MaxLength)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	withTempSettings(t)
	t.Setenv(EnvVault, "")
	t.Setenv(EnvWorkers, "")

	config := DefaultConfig()
	config.Vault.Path = "/secure/vault.db"
	config.Crypto.Workers = 3
	config.Passwords.Length = 20
	config.Encrypt.Exclude = []string{"**/.git/**"}

	if err := SaveConfig(config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.VaultPath() != "/secure/vault.db" {
		t.Errorf("Expected vault path override, got %s", loaded.VaultPath())
	}
	if loaded.WorkerCount() != 3 {
		t.Errorf("Expected 3 workers, got %d", loaded.WorkerCount())
	}
	if loaded.Passwords.Length != 20 {
		t.Errorf("Expected length 20, got %d", loaded.Passwords.Length)
	}
	if len(loaded.Encrypt.Exclude) != 1 || loaded.Encrypt.Exclude[0] != "**/.git/**" {
		t.Errorf("Unexpected excludes: %v", loaded.Encrypt.Exclude)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	withTempSettings(t)
	t.Setenv(EnvVault, "/env/vault.db")
	t.Setenv(EnvWorkers, "5")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.VaultPath() != "/env/vault.db" {
		t.Errorf("Expected env vault path, got %s", config.VaultPath())
	}
	if config.WorkerCount() != 5 {
		t.Errorf("Expected 5 workers, got %d", config.WorkerCount())
	}
}

func TestLoadConfigInvalidWorkers(t *testing.T) {
	withTempSettings(t)
	t.Setenv(EnvWorkers, "many")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("Expected error for invalid worker count")
	}
}

func TestLoadConfigFileIgnoresEnvironment(t *testing.T) {
	withTempSettings(t)
	t.Setenv(EnvVault, "/from/env.db")
	t.Setenv(EnvWorkers, "9")

	config := DefaultConfig()
	config.Crypto.Workers = 2
	if err := SaveConfig(config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	fromFile, err := LoadConfigFile()
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if fromFile.Vault.Path != "" || fromFile.Crypto.Workers != 2 {
		t.Errorf("Environment leaked into the file config: %+v", fromFile)
	}

	merged, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if merged.VaultPath() != "/from/env.db" || merged.WorkerCount() != 9 {
		t.Errorf("Environment overrides not applied: %+v", merged)
	}
}
