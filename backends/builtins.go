package backends

import (
	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/filesystem"
	"github.com/spf13/afero"
)

type BuiltInBackendType = string

const (
	OSBackendType     BuiltInBackendType = "os"     // local disk through afero.OsFs
	MemMapBackendType BuiltInBackendType = "memmap" // afero.MemMapFs, nothing touches disk
	MemBackendType    BuiltInBackendType = "mem"    // filesystem.FileSystem, servable over FUSE
)

// RegisterBuiltins registers all built-in backends on r by default
// or only the specific ones if names are provided
func RegisterBuiltins(r *Registry, names ...BuiltInBackendType) {
	if len(names) == 0 {
		names = []BuiltInBackendType{OSBackendType, MemMapBackendType, MemBackendType}
	}

	for _, name := range names {
		switch name {
		case OSBackendType:
			r.Register(name, func(cfg *config.Config) (treefs.TempBackend, error) {
				return NewAferoBackend(afero.NewOsFs(), cfg), nil
			})
		case MemMapBackendType:
			r.Register(name, func(cfg *config.Config) (treefs.TempBackend, error) {
				return NewAferoBackend(afero.NewMemMapFs(), cfg), nil
			})
		case MemBackendType:
			r.Register(name, func(cfg *config.Config) (treefs.TempBackend, error) {
				return filesystem.NewFS(cfg), nil
			})
		}
	}
}

// RegisterDefaultBuiltins is RegisterBuiltins on the default registry
func RegisterDefaultBuiltins(names ...BuiltInBackendType) {
	RegisterBuiltins(defaultRegistry, names...)
}
