// Package config loads config.toml and exposes it through an
// atomically-swapped global, the same Init/Load/Update/Swap shape the
// ambient config layer in the wider codebase uses, generalized here to
// read a config file from disk instead of only supplying in-memory
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "config.toml"

type ServerConfig struct {
	Address     string `toml:"address"`
	Port        uint16 `toml:"port"`
	AutoConnect bool   `toml:"auto_connect"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

type UserConfig struct {
	Name     string `toml:"name"`
	Password string `toml:"password"`
	Port     uint16 `toml:"port"`
}

type RootFolder struct {
	Path        string `toml:"path"`
	Alias       string `toml:"alias"`
	IsBuddyOnly bool   `toml:"is_buddy_only"`
}

type IndexConfig struct {
	SaveDir     string       `toml:"save_dir"`
	RootFolders []RootFolder `toml:"root_folders"`
}

// Config is the top-level client configuration, read from config.toml
// with ambient tuning knobs layered in from in-process defaults.
type Config struct {
	Server ServerConfig `toml:"server"`
	User   UserConfig   `toml:"user"`
	Index  IndexConfig  `toml:"index"`

	// DialTimeout bounds establishing a peer TCP connection.
	DialTimeout time.Duration `toml:"-"`
	// AddressLookupTimeout bounds the retry loop waiting for a
	// peer's address to become known to the broker.
	AddressLookupTimeout time.Duration `toml:"-"`
	// ChunkSize is the read/write granularity for file transfers.
	ChunkSize int `toml:"-"`
	// PeerWorkers is the size of the peer broker's worker pool.
	PeerWorkers int `toml:"-"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:     "server.slsknet.org",
			Port:        2242,
			AutoConnect: true,
		},
		Index: IndexConfig{
			SaveDir: filepath.Join(".", ".shares"),
		},
		DialTimeout:          10 * time.Second,
		AddressLookupTimeout: time.Second,
		ChunkSize:            64 * 1024,
		PeerWorkers:          256,
	}
}

// LoadFile reads config.toml at path, filling in defaults for
// anything it doesn't specify. A missing file is not an error:
// defaults are returned as-is.
func LoadFile(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// SaveFile writes cfg to path in TOML form, overwriting any existing file.
func SaveFile(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
