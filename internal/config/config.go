// Package config provides configuration management for columnar array
// construction and memory behavior.
package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for columnar operations
type Config struct {
	// ChunkSize is the target segment length when building chunked arrays
	// from slices (0 = single segment)
	ChunkSize int `yaml:"chunk_size"`
	// BuilderCapacity is the initial capacity reserved by Arrow builders
	// during rebuilds (0 = builder default)
	BuilderCapacity int `yaml:"builder_capacity"`
	// CheckedAllocator wraps allocators with Arrow's leak-checking
	// allocator; intended for tests and debugging
	CheckedAllocator bool `yaml:"checked_allocator"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		ChunkSize:        0,
		BuilderCapacity:  0,
		CheckedAllocator: false,
	}
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.ChunkSize < 0 {
		return fmt.Errorf("config: chunk_size must be non-negative, got %d", c.ChunkSize)
	}
	if c.BuilderCapacity < 0 {
		return fmt.Errorf("config: builder_capacity must be non-negative, got %d", c.BuilderCapacity)
	}
	return nil
}

// LoadFromFile reads a YAML configuration file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays COLUMNAR_* environment variables onto c
func (c *Config) ApplyEnv() {
	if v, ok := lookupInt("COLUMNAR_CHUNK_SIZE"); ok {
		c.ChunkSize = v
	}
	if v, ok := lookupInt("COLUMNAR_BUILDER_CAPACITY"); ok {
		c.BuilderCapacity = v
	}
	if v, ok := os.LookupEnv("COLUMNAR_CHECKED_ALLOCATOR"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.CheckedAllocator = b
		}
	}
}

func lookupInt(key string) (int, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

var (
	globalMu  sync.RWMutex
	globalCfg = Default()
)

// Global returns the process-wide configuration
func Global() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	cfg := *globalCfg
	return &cfg
}

// SetGlobal replaces the process-wide configuration
func SetGlobal(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	copied := *cfg
	globalCfg = &copied
	return nil
}
