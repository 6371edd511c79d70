package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/vtree/internal/util"
	"gopkg.in/yaml.v3"
)

// Verbosity levels as exposed to users (CLI -v, config files).
// They map onto [util.LogLevel] in reverse order.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Backing stores available for materialized files. See adapters.RegisterBuiltins.
// The memory store keeps files in process and records no real path, so it
// suits tests and dry runs only.
const (
	OSBackingStore     = "os"
	MemoryBackingStore = "memory"
)

// Drop modes. DropCopy leaves the dragged node in place and appends a clone
// under the target; DropMove detaches the dragged node and re-parents it.
const (
	DropCopy = "copy"
	DropMove = "move"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl           = util.InfoLevel
	DefaultDocumentPath     = "filesystem.json"
	DefaultBackingStore     = OSBackingStore
	DefaultBackingDir       = "."
	DefaultMaterializeFiles = true
	DefaultFallbackToDemo   = true
	DefaultDropMode         = DropCopy
	DefaultFsName           = "vtree"
	DefaultName             = "vtree"
)

// Config contains runtime configuration values for a vtree session.
type Config struct {
	MountOptions
	LogLvl           util.LogLevel // Internal log level (Default Info)
	DocumentPath     string        // Persisted document; .json, .yaml or .yml (Default filesystem.json)
	BackingStore     string        // Store for materialized files: "os" or "memory" (Default os)
	BackingDir       string        // Root directory of the "os" backing store (Default .)
	MaterializeFiles bool          // Create an empty backing file for each new file node (Default true)
	FallbackToDemo   bool          // Install the demo tree when the document is missing or corrupt (Default true)
	DropMode         string        // "copy" or "move" (Default copy)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a user facing verbosity between 1 (error) and 5 (trace)
	LogLvl           *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	DocumentPath     *string `yaml:"document,omitempty" json:"document,omitempty"`
	BackingStore     *string `yaml:"backing_store,omitempty" json:"backing_store,omitempty"`
	BackingDir       *string `yaml:"backing_dir,omitempty" json:"backing_dir,omitempty"`
	MaterializeFiles *bool   `yaml:"materialize_files,omitempty" json:"materialize_files,omitempty"`
	FallbackToDemo   *bool   `yaml:"fallback_to_demo,omitempty" json:"fallback_to_demo,omitempty"`
	DropMode         *string `yaml:"drop_mode,omitempty" json:"drop_mode,omitempty"`
	Debug            *bool   `yaml:"fuse_debug,omitempty" json:"fuse_debug,omitempty"`
	FsName           *string `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name             *string `yaml:"name,omitempty" json:"name,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:           DefaultLogLvl,
		DocumentPath:     DefaultDocumentPath,
		BackingStore:     DefaultBackingStore,
		BackingDir:       DefaultBackingDir,
		MaterializeFiles: DefaultMaterializeFiles,
		FallbackToDemo:   DefaultFallbackToDemo,
		DropMode:         DefaultDropMode,
	}
}

// NewConfig returns the defaults merged with override. A nil override is allowed.
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
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLevel(*override.LogLvl)
	}
	if override.DocumentPath != nil {
		c.DocumentPath = *override.DocumentPath
	}
	if override.BackingStore != nil {
		c.BackingStore = *override.BackingStore
	}
	if override.BackingDir != nil {
		c.BackingDir = *override.BackingDir
	}
	if override.MaterializeFiles != nil {
		c.MaterializeFiles = *override.MaterializeFiles
	}
	if override.FallbackToDemo != nil {
		c.FallbackToDemo = *override.FallbackToDemo
	}
	if override.DropMode != nil {
		c.DropMode = *override.DropMode
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
}

// Validate reports settings that cannot be honored
func (c *Config) Validate() error {
	switch c.DropMode {
	case DropCopy, DropMove:
	default:
		return fmt.Errorf("invalid drop mode %q: must be %q or %q", c.DropMode, DropCopy, DropMove)
	}
	if c.DocumentPath == "" {
		return fmt.Errorf("document path must not be empty")
	}
	return nil
}

// VerboseToLogLevel clamps a verbosity to 1..5 and converts it to a [util.LogLevel]
func VerboseToLogLevel(verbose int) util.LogLevel {
	verbose = max(ErrorVerbose, min(verbose, TraceVerbose))
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return logLvls[verbose-1]
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
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
