package config

import "github.com/brettbedarf/treefs/internal/util"

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// DefaultBackend is the registered backend name used when none is configured
	DefaultBackend = "os"

	DefaultDirPerm  uint32 = 0o755
	DefaultFilePerm uint32 = 0o644

	// DefaultTempPattern prefixes ephemeral directory names
	DefaultTempPattern = "treefs-"

	DefaultDryRun = false

	DefaultFsName = "treefs"
	DefaultName   = "treefs"

	// DefaultAttrTimeout is the FUSE attribute cache timeout in seconds
	DefaultAttrTimeout = 1.0

	// DefaultEntryTimeout is the FUSE directory entry cache timeout in seconds
	DefaultEntryTimeout = 1.0
)

// Verbosity values accepted by [ConfigOverride].LogLvl (and the CLI -v flag).
// Higher is chattier; out of range values are clamped.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// VerboseToLogLevel clamps v to [ErrorVerbose, TraceVerbose] and returns the
// matching log level
func VerboseToLogLevel(v int) util.LogLevel {
	v = max(ErrorVerbose, min(v, TraceVerbose))
	lvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return lvls[v-1]
}
