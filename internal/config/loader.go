package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/mattjoyce/launchkit/internal/protocol"
)

// PathEnv names the environment variable that points at the config file.
const PathEnv = "LAUNCHKIT_CONFIG"

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML file path is taken from LAUNCHKIT_CONFIG, falling back to
// ~/.config/launchkit/config.yaml. A missing default file is fine; a missing
// explicit file is an error.
func Load() (*Config, error) {
	path := os.Getenv(PathEnv)
	explicitPath := path != ""
	if !explicitPath {
		path = DefaultPath()
	}
	return LoadFile(path, explicitPath)
}

// LoadFile loads configuration from path. When required is false and the file
// does not exist, configuration comes from ENV + defaults only.
func LoadFile(path string, required bool) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if required {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		// No file, load from ENV + defaults only.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// DefaultPath returns ~/.config/launchkit/config.yaml, or a relative
// config.yaml when the home directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "launchkit", "config.yaml")
}

// Validate checks enumerated and ranged settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "discard":
	default:
		return fmt.Errorf("log.format %q must be json, text or discard", c.Log.Format)
	}
	if _, err := protocol.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if strings.TrimSpace(c.Dictionary.Command) == "" {
		return fmt.Errorf("dictionary.command is required")
	}
	if c.Dictionary.MaxSubtitleWidth < 0 {
		return fmt.Errorf("dictionary.max_subtitle_width must not be negative")
	}
	if strings.TrimSpace(c.Windows.Command) == "" {
		return fmt.Errorf("windows.command is required")
	}
	return nil
}

// OutputFormat returns the validated output format.
func (c *Config) OutputFormat() protocol.Format {
	f, err := protocol.ParseFormat(c.Output.Format)
	if err != nil {
		return protocol.FormatArray
	}
	return f
}
