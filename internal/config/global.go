package config

import "sync/atomic"

var global atomic.Value

// Init loads path into the process-wide config, falling back to
// defaults if the file does not exist.
func Init(path string) error {
	cfg, err := LoadFile(path)
	if err != nil {
		return err
	}
	c := cfg
	global.Store(&c)
	return nil
}

// Load returns the current config. Treat the result as read-only.
func Load() *Config {
	v, _ := global.Load().(*Config)
	if v == nil {
		c := defaultConfig()
		return &c
	}
	return v
}

// Update applies mut to a copy of the current config and swaps it in
// atomically, returning the new value.
func Update(mut func(*Config)) *Config {
	curr := Load()
	next := *curr
	mut(&next)
	global.Store(&next)
	return &next
}

// Swap replaces the global config atomically with next.
func Swap(next Config) *Config {
	global.Store(&next)
	return &next
}
