package server

import (
	"context"
	"syscall"
	"time"

	"github.com/brettbedarf/treefs/filesystem"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// treeNode exposes one filesystem.Node to the kernel. Lookups and listings
// read the live tree so entries created after mounting show up.
type treeNode struct {
	fs.Inode
	node         *filesystem.Node
	attrTimeout  time.Duration
	entryTimeout time.Duration
}

var (
	_ fs.NodeGetattrer = (*treeNode)(nil)
	_ fs.NodeLookuper  = (*treeNode)(nil)
	_ fs.NodeReaddirer = (*treeNode)(nil)
	_ fs.NodeOpener    = (*treeNode)(nil)
	_ fs.NodeReader    = (*treeNode)(nil)
)

func (n *treeNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Attr = n.node.CopyAttr()
	out.SetTimeout(n.attrTimeout)
	return 0
}

func (n *treeNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	logger := util.GetLogger("Fuse.Lookup")

	child, ok := n.node.GetChild(name)
	if !ok {
		logger.Trace().Str("parent", n.node.Path()).Str("name", name).Msg("Not found")
		return nil, syscall.ENOENT
	}

	out.Attr = child.CopyAttr()
	out.SetAttrTimeout(n.attrTimeout)
	out.SetEntryTimeout(n.entryTimeout)

	embedder := &treeNode{node: child, attrTimeout: n.attrTimeout, entryTimeout: n.entryTimeout}
	stable := fs.StableAttr{Mode: out.Attr.Mode & syscall.S_IFMT, Ino: out.Attr.Ino}
	return n.NewInode(ctx, embedder, stable), 0
}

func (n *treeNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	if !n.node.IsDir() {
		return nil, syscall.ENOTDIR
	}
	children := n.node.Children()
	entries := make([]fuse.DirEntry, 0, len(children))
	for _, child := range children {
		attr := child.CopyAttr()
		entries = append(entries, fuse.DirEntry{Name: child.Name(), Mode: attr.Mode, Ino: attr.Ino})
	}
	return fs.NewListDirStream(entries), 0
}

// Open refuses writes; the mount is read-only
func (n *treeNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if n.node.IsDir() {
		return nil, 0, syscall.EISDIR
	}
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC|syscall.O_APPEND) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *treeNode) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	return fuse.ReadResultData(readAt(n.node.Data(), dest, off)), 0
}

// readAt returns the slice of data covering [off, off+len(dest))
func readAt(data, dest []byte, off int64) []byte {
	if off < 0 || off >= int64(len(data)) {
		return nil
	}
	end := min(off+int64(len(dest)), int64(len(data)))
	return data[off:end]
}
