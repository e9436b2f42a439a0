package treefs

import (
	"fmt"
	"path/filepath"

	"github.com/brettbedarf/treefs/internal/util"
)

// Create materializes tree under root, which must already exist (or be
// creatable by the backend on demand).
//
// Entries are walked depth-first, pre-order, in declaration order. A
// subdirectory's CreateDir always precedes its children. The first failing
// operation stops the whole walk and is returned exactly as the backend
// reported it; everything created before it is left in place.
func Create(b Backend, root string, tree Tree) error {
	return create(b, root, tree, false)
}

func create(b Backend, root string, tree Tree, deferLazy bool) error {
	logger := util.GetLogger("treefs.Create")
	logger.Debug().Str("root", root).Int("ops", tree.Len()).Msg("Creating tree")

	w := walker{backend: b, logger: logger, deferLazy: deferLazy}
	if err := w.walk(root, tree); err != nil {
		return err
	}

	logger.Debug().Str("root", root).Int("dirs", w.dirs).Int("files", w.files).Msg("Tree created")
	return nil
}

// CreateTemp allocates an ephemeral root from b, materializes tree under it
// and returns the owning handle. If the walk fails the handle is closed so
// the partial tree is reclaimed, and the walk error is returned.
func CreateTemp(b TempBackend, tree Tree) (TempDir, error) {
	logger := util.GetLogger("treefs.CreateTemp")

	dir, err := b.Allocate()
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to allocate temp dir")
		return nil, err
	}

	if err := Create(b, dir.Path(), tree); err != nil {
		if cerr := dir.Close(); cerr != nil {
			logger.Warn().Err(cerr).Str("path", dir.Path()).Msg("Failed to remove temp dir after failed create")
		}
		return nil, err
	}
	return dir, nil
}

// walker carries the per-walk state; it is not reused across Create calls
type walker struct {
	backend Backend
	logger  util.Logger
	dirs    int
	files   int

	// deferLazy writes nil data for Source and io.Reader content instead of
	// producing it, so planning neither fetches nor drains anything
	deferLazy bool
}

func (w *walker) walk(parent string, tree Tree) error {
	for _, e := range tree {
		if err := w.entry(filepath.Join(parent, e.Key), e.Value); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) entry(path string, v Value) error {
	switch v.Kind {
	case SkipKind:
		w.logger.Trace().Str("path", path).Msg("Skipped")
		return nil

	case EmptyFileKind:
		return w.write(path, []byte{})

	case ContentKind:
		if w.deferLazy && isLazy(v.Content) {
			return w.write(path, nil)
		}
		data, err := contentBytes(path, v.Content)
		if err != nil {
			w.logger.Debug().Err(err).Str("path", path).Msg("Failed to convert content")
			return err
		}
		return w.write(path, data)

	case DirKind:
		if err := w.backend.CreateDir(path); err != nil {
			w.logger.Debug().Err(err).Str("path", path).Msg("Failed to create dir")
			return err
		}
		w.dirs++
		w.logger.Trace().Str("path", path).Msg("Created dir")
		return w.walk(path, v.Children)

	default:
		return fmt.Errorf("unknown value kind %d at %s", v.Kind, path)
	}
}

func (w *walker) write(path string, data []byte) error {
	if err := w.backend.WriteFile(path, data); err != nil {
		w.logger.Debug().Err(err).Str("path", path).Msg("Failed to write file")
		return err
	}
	w.files++
	w.logger.Trace().Str("path", path).Int("size", len(data)).Msg("Wrote file")
	return nil
}
