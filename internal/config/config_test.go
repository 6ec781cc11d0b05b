package config

import (
	"path/filepath"
	"testing"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Address != "server.slsknet.org" || cfg.Server.Port != 2242 {
		t.Fatalf("cfg.Server = %+v", cfg.Server)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := defaultConfig()
	cfg.User.Name = "nicotine"
	cfg.Index.RootFolders = []RootFolder{{Path: "/music", Alias: "music"}}

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.User.Name != "nicotine" {
		t.Fatalf("User.Name = %q", got.User.Name)
	}
	if len(got.Index.RootFolders) != 1 || got.Index.RootFolders[0].Alias != "music" {
		t.Fatalf("Index.RootFolders = %+v", got.Index.RootFolders)
	}
}

func TestGlobalUpdateAppliesMutation(t *testing.T) {
	Swap(defaultConfig())

	Update(func(c *Config) { c.User.Name = "updated" })

	if Load().User.Name != "updated" {
		t.Fatalf("Load().User.Name = %q, want updated", Load().User.Name)
	}
}
