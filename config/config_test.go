package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/treefs/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestNewConfig_WithNilOverride tests that NewConfig creates a config with all default values
// when no override is provided.
func TestNewConfig_WithNilOverride(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(nil)

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values when no config provided")
}

func TestNewConfig_WithAllOverride(t *testing.T) {
	t.Parallel()

	override := createOverride()
	cfg := NewConfig(override)

	expCfg := &Config{
		MountOptions: MountOptions{
			Debug:  true,
			FsName: "test_fs",
			Name:   "test_name",
		},
		LogLvl:       util.TraceLevel,
		Backend:      "memmap",
		DirPerm:      0o700,
		FilePerm:     0o600,
		TempPattern:  "test-",
		DryRun:       true,
		AttrTimeout:  *override.AttrTimeout,
		EntryTimeout: *override.EntryTimeout,
	}
	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields")
}

func TestConfig_Merge_LogLvlConversion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		verboseValue  int
		expectedLevel util.LogLevel
	}{
		{"verbose_1_error", 1, util.ErrorLevel},
		{"verbose_2_warn", 2, util.WarnLevel},
		{"verbose_3_info", 3, util.InfoLevel},
		{"verbose_4_debug", 4, util.DebugLevel},
		{"verbose_5_trace", 5, util.TraceLevel},
		{"verbose_0_clamped_to_1", 0, util.ErrorLevel},
		{"verbose_100_clamped_to_5", 100, util.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig(&ConfigOverride{LogLvl: util.Pointer(tt.verboseValue)})

			assert.Equal(t, tt.expectedLevel, cfg.LogLvl,
				"verbose %d should map to util.LogLevel %v", tt.verboseValue, tt.expectedLevel)
		})
	}
}

func TestConfig_Merge_NilOverrideVals(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(&ConfigOverride{})

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values for nil override fields")
}

func TestConfig_Merge_PartialOverride(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(&ConfigOverride{
		Backend: util.Pointer("mem"),
		DryRun:  util.Pointer(false),
	})

	expCfg := createDefaultCfg()
	expCfg.Backend = "mem"

	assert.Equal(t, expCfg, cfg, "must override provided fields and leave rest default")
}

func TestLoadConfigOverrideFile_Valid(t *testing.T) {
	t.Parallel()

	cases := map[string]func(any) ([]byte, error){
		".yaml": yaml.Marshal,
		".yml":  yaml.Marshal,
		".json": json.Marshal,
	}

	for ext, marshal := range cases {
		t.Run("valid"+ext, func(t *testing.T) {
			t.Parallel()
			override := createOverride()
			data, err := marshal(override)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "override"+ext)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			loaded, err := LoadConfigOverrideFile(path)

			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, *override, *loaded)
		})
	}
}

func TestLoadConfigOverrideFile_YAMLKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "treefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: mem\nverbose: 4\ntemp_pattern: proj-\n"), 0o600))

	cfg, err := NewConfigFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, "mem", cfg.Backend)
	assert.Equal(t, util.DebugLevel, cfg.LogLvl)
	assert.Equal(t, "proj-", cfg.TempPattern)
	assert.Equal(t, DefaultFilePerm, cfg.FilePerm)
}

func TestLoadConfigOverrideFile_NonExistentFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "does_not_exist.yaml")

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "expected not exist error, got %v", err)
}

func TestLoadConfigOverrideFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.txt")
	require.NoError(t, os.WriteFile(path, []byte("backend: os"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config file extension")
}

func TestLoadConfigOverrideFile_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"backend": 12`), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config file")
}

func TestNewConfigFromFile_FileError(t *testing.T) {
	t.Parallel()

	_, err := NewConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func createDefaultCfg() *Config {
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

// createOverride makes a ConfigOverride with all non-default values
func createOverride() *ConfigOverride {
	return &ConfigOverride{
		Debug:        util.Pointer(true),
		FsName:       util.Pointer("test_fs"),
		Name:         util.Pointer("test_name"),
		LogLvl:       util.Pointer(TraceVerbose),
		Backend:      util.Pointer("memmap"),
		DirPerm:      util.Pointer(uint32(0o700)),
		FilePerm:     util.Pointer(uint32(0o600)),
		TempPattern:  util.Pointer("test-"),
		DryRun:       util.Pointer(true),
		AttrTimeout:  util.Pointer(float64(DefaultAttrTimeout + 1)),
		EntryTimeout: util.Pointer(float64(DefaultEntryTimeout + 1)),
	}
}
