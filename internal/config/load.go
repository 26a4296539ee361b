package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const appDir = "midgard-skin"

// Load builds the configuration with priority defaults < file < flags.
// flags may be nil.
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	var path string
	if flags != nil {
		path = flags.Config
	}
	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if flags != nil {
		flags.apply(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would only fail much later.
func (c *Config) Validate() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size %dx%d must be positive", c.Render.Width, c.Render.Height)
	}
	switch c.Preview.Format {
	case "webp", "png":
	default:
		return fmt.Errorf("preview format %q: want webp or png", c.Preview.Format)
	}
	if c.Preview.Columns <= 0 || c.Preview.CellSize <= 0 {
		return fmt.Errorf("preview grid %d columns of %d px must be positive", c.Preview.Columns, c.Preview.CellSize)
	}
	if _, err := c.Pipeline(); err != nil {
		return err
	}
	return nil
}

// findConfigFile looks in the working directory, then the user config dir.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MidgardSkin")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MidgardSkin")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDir)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appDir)
	}
}

// loadFromFile merges a YAML file over cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
