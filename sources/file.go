package sources

import (
	"path/filepath"

	"github.com/brettbedarf/treefs"
	"github.com/spf13/afero"
)

// FileSource copies the contents of an existing file when the entry is walked.
// Relative paths are resolved against BaseDir.
type FileSource struct {
	Path    string
	BaseDir string
	Fs      afero.Fs // Default is the OS filesystem
}

func (f *FileSource) Bytes() ([]byte, error) {
	fs := f.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	p := f.Path
	if !filepath.IsAbs(p) && f.BaseDir != "" {
		p = filepath.Join(f.BaseDir, p)
	}
	return afero.ReadFile(fs, p)
}

var _ treefs.Source = (*FileSource)(nil)
