package filesystem

import (
	"sync"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// Inode holds the fuse attributes and, for regular files, the contents
type Inode struct {
	// Low-level fuse wire protocol attributes; Only access directly if
	// handling locks manually
	fuseAttr *fuse.Attr
	data     []byte
	hLinks   []*Node // Hard links to this inode
	mu       sync.RWMutex
}

func NewInode(attr *fuse.Attr) *Inode {
	return &Inode{
		fuseAttr: attr,
		hLinks:   make([]*Node, 0, 1), // 1 init capacity since most inodes expected to have 1
	}
}

// addHardLinkLocked appends a new hard link to the inode.
// Caller must hold n.mu.Lock().
func (n *Inode) addHardLinkLocked(node *Node) {
	n.hLinks = append(n.hLinks, node)
	n.fuseAttr.Nlink = uint32(len(n.hLinks))
}

// AddHardLink adds a new Node, including the initial, as hard link
func (n *Inode) AddHardLink(node *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.addHardLinkLocked(node)
}

// CopyAttr returns a thread-safe copy of the inode's attributes
func (n *Inode) CopyAttr() fuse.Attr {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return *n.fuseAttr
}

// IsDir reports whether the inode's mode is a directory
func (n *Inode) IsDir() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.fuseAttr.Mode&syscall.S_IFMT == syscall.S_IFDIR
}

// Data returns a copy of the file contents
func (n *Inode) Data() []byte {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]byte{}, n.data...)
}

// SetData replaces the file contents and bumps size and mtime
func (n *Inode) SetData(data []byte) {
	now := time.Now()

	n.mu.Lock()
	defer n.mu.Unlock()
	n.data = append([]byte{}, data...)
	n.fuseAttr.Size = uint64(len(n.data))
	n.fuseAttr.Blocks = (n.fuseAttr.Size + 511) / 512
	n.fuseAttr.Mtime = uint64(now.Unix())
	n.fuseAttr.Mtimensec = uint32(now.Nanosecond())
}
