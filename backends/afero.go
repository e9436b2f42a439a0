package backends

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/spf13/afero"
)

// AferoBackend implements treefs.TempBackend on any afero.Fs.
//
// CreateDir is MkdirAll. WriteFile overwrites, and when the parent directory
// is missing creates it and retries once. Other errors are returned as afero
// reports them (usually *fs.PathError carrying the path).
type AferoBackend struct {
	Fs          afero.Fs
	DirPerm     os.FileMode
	FilePerm    os.FileMode
	TempPattern string
}

// NewAferoBackend wraps fs with the permissions and temp pattern from cfg
func NewAferoBackend(fs afero.Fs, cfg *config.Config) *AferoBackend {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return &AferoBackend{
		Fs:          fs,
		DirPerm:     os.FileMode(cfg.DirPerm),
		FilePerm:    os.FileMode(cfg.FilePerm),
		TempPattern: cfg.TempPattern,
	}
}

func (b *AferoBackend) CreateDir(path string) error {
	return b.Fs.MkdirAll(path, b.DirPerm)
}

func (b *AferoBackend) WriteFile(path string, data []byte) error {
	err := afero.WriteFile(b.Fs, path, data, b.FilePerm)
	if err == nil || !errors.Is(err, iofs.ErrNotExist) {
		return err
	}

	logger := util.GetLogger("AferoBackend.WriteFile")
	dir := filepath.Dir(path)
	logger.Trace().Str("path", path).Str("dir", dir).Msg("Parent missing, creating it")
	if derr := b.Fs.MkdirAll(dir, b.DirPerm); derr != nil {
		return derr
	}
	return afero.WriteFile(b.Fs, path, data, b.FilePerm)
}

// Allocate creates a fresh directory under the OS temp dir (for memory
// filesystems the same path is used inside the memory map)
func (b *AferoBackend) Allocate() (treefs.TempDir, error) {
	path, err := afero.TempDir(b.Fs, "", b.TempPattern)
	if err != nil {
		return nil, err
	}
	return &aferoTempDir{fs: b.Fs, path: path}, nil
}

type aferoTempDir struct {
	fs   afero.Fs
	path string
}

func (d *aferoTempDir) Path() string { return d.path }

// Close removes the directory tree; removing an already removed dir is a no-op
func (d *aferoTempDir) Close() error {
	return d.fs.RemoveAll(d.path)
}

var _ treefs.TempBackend = (*AferoBackend)(nil)
