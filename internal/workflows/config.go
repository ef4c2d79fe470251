package workflows

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/PolarWolf314/xpm/internal/configs"
	kerrors "github.com/PolarWolf314/xpm/internal/errors"
	"github.com/PolarWolf314/xpm/internal/passwords"
	"github.com/PolarWolf314/xpm/internal/utils"

	"github.com/bmatcuk/doublestar/v4"
)

// loadConfig is a variable so tests can supply a config without writing one.
var loadConfig = configs.LoadConfig

// ConfigResult is the config file and where it lives.
type ConfigResult struct {
	Path   string
	Config *configs.Config

	// Exists is false when Config holds defaults because no file was written yet.
	Exists bool
}

// InitConfig writes a config file holding the defaults.
//
// Returns ErrIO if the file exists and force is false.
func InitConfig(ctx context.Context, force bool) (*ConfigResult, error) {
	path := configs.XpmSettings.ConfigPath
	if _, err := os.Stat(path); err == nil && !force {
		return nil, fmt.Errorf("%s already exists (use --force to overwrite): %w", path, kerrors.ErrIO)
	}

	config := configs.DefaultConfig()
	if err := configs.SaveConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	return &ConfigResult{Path: path, Config: config, Exists: true}, nil
}

// ShowConfig returns the config file contents, without environment overrides.
func ShowConfig(ctx context.Context) (*ConfigResult, error) {
	path := configs.XpmSettings.ConfigPath
	config, err := configs.LoadConfigFile()
	if err != nil {
		return nil, err
	}
	_, statErr := os.Stat(path)
	return &ConfigResult{Path: path, Config: config, Exists: statErr == nil}, nil
}

// configSetters maps settable keys to a function that validates and applies a value.
var configSetters = map[string]func(*configs.Config, string) error{
	"vault.path": func(c *configs.Config, v string) error {
		if v == "" {
			c.Vault.Path = ""
			return nil
		}
		expanded, err := utils.ExpandPath(v)
		c.Vault.Path = expanded
		return err
	},
	"crypto.workers": func(c *configs.Config, v string) error {
		n, err := parseCount(v)
		c.Crypto.Workers = n
		return err
	},
	"crypto.sequential": func(c *configs.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%q is not true or false", v)
		}
		c.Crypto.Sequential = b
		return nil
	},
	"passwords.length": func(c *configs.Config, v string) error {
		n, err := parseCount(v)
		c.Passwords.Length = n
		return err
	},
	"passwords.max_length": func(c *configs.Config, v string) error {
		n, err := parseCount(v)
		c.Passwords.MaxLength = n
		return err
	},
	"passwords.classes": func(c *configs.Config, v string) error {
		names := splitList(v)
		if len(names) > 0 {
			if _, err := passwords.ParseClasses(names); err != nil {
				return err
			}
		}
		c.Passwords.Classes = names
		return nil
	},
	"encrypt.exclude": func(c *configs.Config, v string) error {
		patterns := splitList(v)
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("invalid exclude pattern %q", p)
			}
		}
		c.Encrypt.Exclude = patterns
		return nil
	},
}

// ConfigKeys lists the keys SetConfigValue accepts, sorted.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for k := range configSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetConfigValue validates value for key and saves it to the config file.
// List keys take comma-separated values; an empty value clears the setting.
//
// Returns ErrInvalidConfig for an unknown key or a value that does not parse.
func SetConfigValue(ctx context.Context, key, value string) (*ConfigResult, error) {
	set, ok := configSetters[strings.ToLower(key)]
	if !ok {
		return nil, fmt.Errorf("%q (valid keys: %s): %w", key, strings.Join(ConfigKeys(), ", "), kerrors.ErrInvalidConfig)
	}

	config, err := configs.LoadConfigFile()
	if err != nil {
		return nil, err
	}
	if err := set(config, strings.TrimSpace(value)); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", key, kerrors.ErrInvalidConfig, err)
	}
	if err := configs.SaveConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrIO, err)
	}
	return &ConfigResult{Path: configs.XpmSettings.ConfigPath, Config: config, Exists: true}, nil
}

func parseCount(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q is not a non-negative number", v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
