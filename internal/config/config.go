// Package config loads and persists the HOWS settings file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
)

const DefaultFileName = "hows.json"

// ErrMalformed is returned by Load when the settings file exists but
// cannot be decoded.
var ErrMalformed = errors.New("malformed configuration")

type Config struct {
	HostAddress    string
	HostPort       string
	WebRootName    string
	AllowDirList   bool
	ShowVersion    bool
	AutoExtensions []string
}

func Default() *Config {
	return &Config{
		HostAddress:    "localhost",
		HostPort:       "80",
		WebRootName:    "www",
		AllowDirList:   true,
		ShowVersion:    true,
		AutoExtensions: []string{"php", "html"},
	}
}

// Load reads the settings file at path. A missing file is created with
// the default settings, which are then returned. Keys absent from an
// existing file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// Addr is the host:port pair the listener binds to.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.HostAddress, c.HostPort)
}

// WebRoot resolves WebRootName against the directory holding the
// settings file. Absolute names are returned unchanged.
func (c *Config) WebRoot(configPath string) string {
	if filepath.IsAbs(c.WebRootName) {
		return filepath.Clean(c.WebRootName)
	}
	return filepath.Join(filepath.Dir(configPath), c.WebRootName)
}

// HasAutoExtension reports whether ext, with or without a leading dot,
// is one of the auto-index extensions.
func (c *Config) HasAutoExtension(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	for _, e := range c.AutoExtensions {
		if strings.EqualFold(strings.TrimPrefix(e, "."), ext) {
			return true
		}
	}
	return false
}

func (c *Config) String() string {
	return fmt.Sprintf("Config { HostAddress=%s, HostPort=%s, WebRootName=%s, AllowDirList=%t, ShowVersion=%t, AutoExtensions=[%s] }",
		c.HostAddress, c.HostPort, c.WebRootName, c.AllowDirList, c.ShowVersion, strings.Join(c.AutoExtensions, ","))
}
