package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/brettbedarf/vtree/config"
	"github.com/brettbedarf/vtree/internal/util"
)

// Setting keys; also the long flag names with '_' replaced by '-' and the
// VTREE_* environment variable suffixes
const (
	keyConfig           = "config"
	keyVerbose          = "verbose"
	keyDocument         = "document"
	keyBackingStore     = "backing_store"
	keyBackingDir       = "backing_dir"
	keyMaterializeFiles = "materialize_files"
	keyFallbackToDemo   = "fallback_to_demo"
	keyDropMode         = "drop_mode"
	keyFuzzy            = "fuzzy"
	keyFuseDebug        = "fuse_debug"
)

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// bindFlags registers the persistent flags and binds each one, plus its
// environment variable, into v
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.StringP(keyConfig, "c", "", "Config override file (.yaml, .yml or .json)")
	flags.IntP(keyVerbose, "v", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace)")
	flags.StringP(keyDocument, "d", config.DefaultDocumentPath, "Tree document (.json, .yaml or .yml)")
	flags.String(flagName(keyBackingStore), config.DefaultBackingStore, `Backing store for new files: "os" or "memory"`)
	flags.String(flagName(keyBackingDir), config.DefaultBackingDir, "Root directory of the os backing store")
	flags.Bool(flagName(keyMaterializeFiles), config.DefaultMaterializeFiles, "Create an empty backing file for each new file")
	flags.Bool(flagName(keyFallbackToDemo), config.DefaultFallbackToDemo, "Use the demo tree when the document is missing or corrupt")
	flags.String(flagName(keyDropMode), config.DefaultDropMode, `Drop behaviour: "copy" or "move"`)
	flags.Bool(keyFuzzy, false, "Fuzzy name matching for search")
	flags.Bool(flagName(keyFuseDebug), false, "Log every FUSE request")

	for _, key := range []string{
		keyConfig, keyVerbose, keyDocument, keyBackingStore, keyBackingDir,
		keyMaterializeFiles, keyFallbackToDemo, keyDropMode, keyFuzzy, keyFuseDebug,
	} {
		_ = v.BindPFlag(key, flags.Lookup(flagName(key)))
	}
	v.SetEnvPrefix("VTREE")
	v.AutomaticEnv()
}

// loadConfig layers defaults, the override file, then flags and environment
func loadConfig(v *viper.Viper) (*config.Config, error) {
	override := &config.ConfigOverride{}
	if path := v.GetString(keyConfig); path != "" {
		o, err := config.LoadConfigOverrideFile(path)
		if err != nil {
			return nil, err
		}
		override = o
	}

	if v.IsSet(keyVerbose) {
		override.LogLvl = util.Pointer(v.GetInt(keyVerbose))
	}
	if v.IsSet(keyDocument) {
		override.DocumentPath = util.Pointer(v.GetString(keyDocument))
	}
	if v.IsSet(keyBackingStore) {
		override.BackingStore = util.Pointer(v.GetString(keyBackingStore))
	}
	if v.IsSet(keyBackingDir) {
		override.BackingDir = util.Pointer(v.GetString(keyBackingDir))
	}
	if v.IsSet(keyMaterializeFiles) {
		override.MaterializeFiles = util.Pointer(v.GetBool(keyMaterializeFiles))
	}
	if v.IsSet(keyFallbackToDemo) {
		override.FallbackToDemo = util.Pointer(v.GetBool(keyFallbackToDemo))
	}
	if v.IsSet(keyDropMode) {
		override.DropMode = util.Pointer(v.GetString(keyDropMode))
	}
	if v.IsSet(keyFuseDebug) {
		override.Debug = util.Pointer(v.GetBool(keyFuseDebug))
	}

	cfg := config.NewConfig(override)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
