package filesystem

import (
	"errors"
	iofs "io/fs"
	"os"
	"path"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/google/uuid"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Node type bits for fuse.Attr.Mode
const (
	DirAttr  uint32 = syscall.S_IFDIR
	FileAttr uint32 = syscall.S_IFREG
)

// TempRoot is the directory ephemeral roots are allocated under
const TempRoot = "tmp"

var (
	// ErrNotDir is returned when a path segment that must be a directory is a file
	ErrNotDir = errors.New("not a directory")
	// ErrIsDir is returned when writing file contents to a directory
	ErrIsDir = errors.New("is a directory")
	// ErrNotExist is io/fs.ErrNotExist so errors.Is works with either
	ErrNotExist = iofs.ErrNotExist
)

// FileSystem is an in-memory directory tree. It implements treefs.TempBackend
// with create_dir/write_file semantics matching a local disk: directories are
// created mkdir -p style, files are overwritten, and type conflicts fail.
//
// Paths are slash separated and relative to the root; a leading "/" is ignored.
type FileSystem struct {
	cfg     *config.Config
	root    *Node
	lastIno atomic.Uint64 // Last fuse Attr.Ino assigned; incremented when new nodes are created
}

func NewFS(cfg *config.Config) *FileSystem {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	rootAttr := newDefaultAttr(fuse.FUSE_ROOT_ID)
	rootAttr.Mode = DirAttr | cfg.DirPerm

	fs := &FileSystem{cfg: cfg, root: NewNode("", NewInode(rootAttr))}
	fs.lastIno.Store(fuse.FUSE_ROOT_ID)
	return fs
}

// Root returns the root directory node
func (fs *FileSystem) Root() *Node {
	return fs.root
}

// splitPath cleans p and returns its segments; the root yields none
func splitPath(p string) []string {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// CreateDir creates the directory at p and any missing ancestors.
// It is equivalent to `mkdir -p`: existing directories are not an error, but
// a file anywhere on the path is.
func (fs *FileSystem) CreateDir(p string) error {
	logger := util.GetLogger("FS.CreateDir")

	cur := fs.root
	newCnt := 0
	for i, name := range splitPath(p) {
		child, ok := cur.GetChild(name)
		if !ok {
			attr := newDefaultAttr(fs.lastIno.Add(1))
			attr.Mode = DirAttr | fs.cfg.DirPerm
			var loaded bool
			child, loaded = cur.addChildOrGet(NewNode(name, NewInode(attr)))
			if !loaded {
				newCnt++
			}
		}
		if !child.IsDir() {
			segs := splitPath(p)[:i+1]
			return &iofs.PathError{Op: "mkdir", Path: strings.Join(segs, "/"), Err: ErrNotDir}
		}
		cur = child
	}
	if newCnt > 0 {
		logger.Trace().Str("path", p).Int("created", newCnt).Msg("Created dir(s)")
	}
	return nil
}

// WriteFile sets the contents of the file at p, creating it if needed.
// When the parent directory is missing it is created and the write retried once.
func (fs *FileSystem) WriteFile(p string, data []byte) error {
	err := fs.writeFile(p, data)
	if !errors.Is(err, ErrNotExist) {
		return err
	}
	dir, _ := path.Split(strings.Join(splitPath(p), "/"))
	if derr := fs.CreateDir(dir); derr != nil {
		return derr
	}
	return fs.writeFile(p, data)
}

func (fs *FileSystem) writeFile(p string, data []byte) error {
	segs := splitPath(p)
	if len(segs) == 0 {
		return &iofs.PathError{Op: "write", Path: p, Err: ErrIsDir}
	}
	dirSegs, name := segs[:len(segs)-1], segs[len(segs)-1]

	parent, err := fs.lookup(dirSegs)
	if err != nil {
		return &iofs.PathError{Op: "write", Path: strings.Join(segs, "/"), Err: err}
	}
	if !parent.IsDir() {
		return &iofs.PathError{Op: "write", Path: strings.Join(segs, "/"), Err: ErrNotDir}
	}

	node, ok := parent.GetChild(name)
	if !ok {
		attr := newDefaultAttr(fs.lastIno.Add(1))
		attr.Mode = FileAttr | fs.cfg.FilePerm
		node, _ = parent.addChildOrGet(NewNode(name, NewInode(attr)))
	}
	if node.IsDir() {
		return &iofs.PathError{Op: "write", Path: strings.Join(segs, "/"), Err: ErrIsDir}
	}
	node.SetData(data)
	return nil
}

// lookup walks segs from the root. Missing segments yield ErrNotExist and
// files in the middle of the path yield ErrNotDir.
func (fs *FileSystem) lookup(segs []string) (*Node, error) {
	cur := fs.root
	for _, name := range segs {
		if !cur.IsDir() {
			return nil, ErrNotDir
		}
		child, ok := cur.GetChild(name)
		if !ok {
			return nil, ErrNotExist
		}
		cur = child
	}
	return cur, nil
}

// Lookup returns the node at p
func (fs *FileSystem) Lookup(p string) (*Node, bool) {
	n, err := fs.lookup(splitPath(p))
	return n, err == nil
}

// ReadFile returns a copy of the contents of the file at p
func (fs *FileSystem) ReadFile(p string) ([]byte, error) {
	n, err := fs.lookup(splitPath(p))
	if err != nil {
		return nil, &iofs.PathError{Op: "read", Path: p, Err: err}
	}
	if n.IsDir() {
		return nil, &iofs.PathError{Op: "read", Path: p, Err: ErrIsDir}
	}
	return n.Data(), nil
}

// RemoveAll detaches the node at p and its subtree. A missing path is not an error.
func (fs *FileSystem) RemoveAll(p string) error {
	segs := splitPath(p)
	if len(segs) == 0 {
		for _, child := range fs.root.Children() {
			fs.root.RemoveChild(child.Name())
		}
		return nil
	}
	parent, err := fs.lookup(segs[:len(segs)-1])
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return nil
		}
		return &iofs.PathError{Op: "remove", Path: p, Err: err}
	}
	parent.RemoveChild(segs[len(segs)-1])
	return nil
}

// WalkFunc is called for every node below the walk root in pre-order
type WalkFunc func(p string, n *Node) error

// Walk visits every node under the root depth-first, children sorted by
// name. Returning an error from fn stops the walk.
func (fs *FileSystem) Walk(fn WalkFunc) error {
	return walk(fs.root, fn)
}

func walk(n *Node, fn WalkFunc) error {
	for _, child := range n.Children() {
		if err := fn(child.Path(), child); err != nil {
			return err
		}
		if child.IsDir() {
			if err := walk(child, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Allocate creates a fresh, uniquely named directory under [TempRoot].
// Closing the returned handle removes it.
func (fs *FileSystem) Allocate() (treefs.TempDir, error) {
	p := path.Join(TempRoot, fs.cfg.TempPattern+uuid.NewString())
	if err := fs.CreateDir(p); err != nil {
		return nil, err
	}
	return &tempDir{fs: fs, path: p}, nil
}

type tempDir struct {
	fs   *FileSystem
	path string
}

func (d *tempDir) Path() string { return d.path }

func (d *tempDir) Close() error {
	return d.fs.RemoveAll(d.path)
}

var _ treefs.TempBackend = (*FileSystem)(nil)

// newDefaultAttr returns the default attributes for a new node
// NOTE: Make sure to set the Mode field appropriately
func newDefaultAttr(ino uint64) *fuse.Attr {
	now := time.Now()
	return &fuse.Attr{
		Ino: ino,
		Owner: fuse.Owner{
			Uid: uint32(os.Getuid()),
			Gid: uint32(os.Getgid()),
		},
		Atime:     uint64(now.Unix()),
		Mtime:     uint64(now.Unix()),
		Ctime:     uint64(now.Unix()),
		Atimensec: uint32(now.Nanosecond()),
		Mtimensec: uint32(now.Nanosecond()),
		Ctimensec: uint32(now.Nanosecond()),
		Blksize:   4096, // preferred size for fs ops
	}
}
