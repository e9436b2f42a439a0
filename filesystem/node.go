package filesystem

import (
	"slices"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

type Node struct {
	name     string                    // Name of the node (last part of the path). Protected by mu
	parent   *Node                     // Protected by mu
	mu       sync.RWMutex              // Protects the fields above
	children *xsync.Map[string, *Node] // thread-safe map of child nodes by name
	*Inode
}

// NewNode creates a new Node and adds it to the Inode's hard links
//
// NOTE: Parent node is responsible for adding itself to the returned Node's
// Parent ref when linking as its child
func NewNode(name string, inode *Inode) *Node {
	node := &Node{
		Inode:    inode,
		name:     name,
		children: xsync.NewMap[string, *Node](),
	}

	inode.AddHardLink(node)
	return node
}

// Name returns the node's name; "" for the root
func (n *Node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// Path returns the slash separated path of the node relative from root.
// The root returns ""; a node in a detached subtree returns its path relative
// to the detached top.
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil; {
		cur.mu.RLock()
		name, parent := cur.name, cur.parent
		cur.mu.RUnlock()
		if parent == nil {
			break
		}
		parts = append(parts, name)
		cur = parent
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

// addChildOrGet links child under n unless a node with the same name exists,
// in which case the existing node is returned with loaded=true.
func (n *Node) addChildOrGet(child *Node) (actual *Node, loaded bool) {
	actual, loaded = n.children.LoadOrStore(child.name, child)
	if loaded {
		return actual, true
	}
	child.mu.Lock()
	defer child.mu.Unlock()
	child.parent = n
	return child, false
}

// GetChild returns a child node by name
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	return n.children.Load(name)
}

// RemoveChild detaches the named child (and with it its subtree)
func (n *Node) RemoveChild(name string) bool {
	if child, exists := n.children.LoadAndDelete(name); exists {
		child.mu.Lock()
		defer child.mu.Unlock()
		child.parent = nil
		return true
	}
	return false
}

// Children returns the child nodes sorted by name
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, n.children.Size())
	n.children.Range(func(_ string, child *Node) bool {
		out = append(out, child)
		return true
	})
	slices.SortFunc(out, func(a, b *Node) int {
		return strings.Compare(a.name, b.name)
	})
	return out
}
