package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is stunctl's on-disk configuration: the set of STUN/TURN servers
// it probes by default and the TURN REST settings turn-allocate uses.
type Config struct {
	Servers []ServerConfig `toml:"servers"`
	Auth    AuthConfig     `toml:"auth"`
}

// ServerConfig names one diagnostic target.
type ServerConfig struct {
	Name   string `toml:"name"`
	Addr   string `toml:"addr"` // host:port, UDP
	IsTURN bool   `toml:"turn"`
}

// AuthConfig is the long-term credential used for TURN allocation and for
// any STUN server configured to require MESSAGE-INTEGRITY.
type AuthConfig struct {
	Realm  string `toml:"realm"`
	Secret string `toml:"secret"` // TURN REST API shared secret
}

// DefaultConfigPath returns the default location for stunctl's config
// file: $XDG_CONFIG_HOME/stunctl/config.toml, falling back to
// os.UserConfigDir.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("stunctl: resolving config dir: %w", err)
	}
	return filepath.Join(dir, "stunctl", "config.toml"), nil
}

// LoadConfig reads and parses a TOML config file. A missing file is not
// an error: it returns a zero-value Config so stunctl can still run
// against servers named on the command line.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("stunctl: parsing config %s: %w", path, err)
	}
	return &cfg, nil
}
