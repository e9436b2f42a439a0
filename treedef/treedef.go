// Package treedef loads trees from YAML or JSON definition files.
//
// A mapping is a subdirectory, true an empty file, false or null a skipped
// entry, and any other scalar the literal text of a file. Declaration order
// and duplicate keys are preserved.
package treedef

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/spf13/afero"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for file extensions other than .yaml, .yml and .json
var ErrUnknownFormat = errors.New("unknown tree definition format")

// SyntaxError reports a definition that does not describe a tree.
// Line and Column are 1-based; zero means the position is unknown.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return "treedef: " + e.Msg
	}
	return fmt.Sprintf("treedef: line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Options tune how definitions are loaded
type Options struct {
	// BaseDir resolves relative !file paths. LoadFile sets it to the
	// definition's own directory.
	BaseDir string
	// Fs is read by LoadFile and by !file sources. Default is the OS filesystem.
	Fs afero.Fs
}

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Unmarshal parses data as a tree definition in the given format
func Unmarshal(data []byte, format Format) (treefs.Tree, error) {
	return UnmarshalWithOptions(data, format, Options{})
}

func UnmarshalWithOptions(data []byte, format Format, opts Options) (treefs.Tree, error) {
	switch format {
	case FormatYAML:
		return unmarshalYAML(data, opts)
	case FormatJSON:
		return unmarshalJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// LoadFile reads and parses the definition at path using the OS filesystem
func LoadFile(path string) (treefs.Tree, error) {
	return LoadFileWithOptions(path, Options{})
}

func LoadFileWithOptions(path string, opts Options) (treefs.Tree, error) {
	logger := util.GetLogger("treedef.LoadFile")

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}

	data, err := afero.ReadFile(opts.Fs, path)
	if err != nil {
		return nil, err
	}

	tree, err := UnmarshalWithOptions(data, format, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug().Str("path", path).Str("format", string(format)).Int("ops", tree.Len()).Msg("Loaded tree definition")
	return tree, nil
}
