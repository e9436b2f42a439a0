package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/treefs/internal/util"
	"gopkg.in/yaml.v3"
)

// Config contains runtime configuration values for tree creation.
type Config struct {
	MountOptions
	LogLvl      util.LogLevel // Log level (Default info)
	Backend     string        // Registered backend name: os, memmap or mem (Default os)
	DirPerm     uint32        // Mode for directories created by file backends (Default 0755)
	FilePerm    uint32        // Mode for files created by file backends (Default 0644)
	TempPattern string        // Prefix for ephemeral directory names (Default "treefs-")
	DryRun      bool          // Only plan operations, never touch a backend (Default false)

	AttrTimeout  float64 // FUSE attribute cache timeout in seconds (Default 1.0)
	EntryTimeout float64 // FUSE directory entry cache timeout in seconds (Default 1.0)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
//
// LogLvl is a verbosity between [ErrorVerbose] and [TraceVerbose], not a [util.LogLevel].
type ConfigOverride struct {
	Debug        *bool    `yaml:"debug,omitempty" json:"debug,omitempty"`
	FsName       *string  `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name         *string  `yaml:"name,omitempty" json:"name,omitempty"`
	LogLvl       *int     `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	Backend      *string  `yaml:"backend,omitempty" json:"backend,omitempty"`
	DirPerm      *uint32  `yaml:"dir_perm,omitempty" json:"dir_perm,omitempty"`
	FilePerm     *uint32  `yaml:"file_perm,omitempty" json:"file_perm,omitempty"`
	TempPattern  *string  `yaml:"temp_pattern,omitempty" json:"temp_pattern,omitempty"`
	DryRun       *bool    `yaml:"dry_run,omitempty" json:"dry_run,omitempty"`
	AttrTimeout  *float64 `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty"`
	EntryTimeout *float64 `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:       DefaultLogLvl,
		Backend:      DefaultBackend,
		DirPerm:      DefaultDirPerm,
		FilePerm:     DefaultFilePerm,
		TempPattern:  DefaultTempPattern,
		DryRun:       DefaultDryRun,
		AttrTimeout:  DefaultAttrTimeout,
		EntryTimeout: DefaultEntryTimeout,
	}
}

// NewConfig returns the defaults with override applied. A nil override
// yields [NewDefaultConfig].
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	c.Debug = util.ValueOrDefault(override.Debug, c.Debug)
	c.FsName = util.ValueOrDefault(override.FsName, c.FsName)
	c.Name = util.ValueOrDefault(override.Name, c.Name)
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLevel(*override.LogLvl)
	}
	c.Backend = util.ValueOrDefault(override.Backend, c.Backend)
	c.DirPerm = util.ValueOrDefault(override.DirPerm, c.DirPerm)
	c.FilePerm = util.ValueOrDefault(override.FilePerm, c.FilePerm)
	c.TempPattern = util.ValueOrDefault(override.TempPattern, c.TempPattern)
	c.DryRun = util.ValueOrDefault(override.DryRun, c.DryRun)
	c.AttrTimeout = util.ValueOrDefault(override.AttrTimeout, c.AttrTimeout)
	c.EntryTimeout = util.ValueOrDefault(override.EntryTimeout, c.EntryTimeout)
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
