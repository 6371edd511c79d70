package filesystem

import (
	"slices"

	"github.com/brettbedarf/vtree"
)

// Node is a single entry in the virtual tree. A node exclusively owns its
// children; copies are always made with [FileSystem.DeepClone].
//
// NOTE: Node is not safe for concurrent mutation. Callers that share a tree
// across goroutines must serialize access (see server.Session).
type Node struct {
	name     string // Display name; unique among siblings
	label    string // Free-form type label, i.e. "pdf document"
	kind     Kind
	realPath string // Materialized backing file; "" if none
	iconKey  string
	parent   *Node // nil for root nodes and detached nodes
	children []*Node
	nodeID   uint64 // Registry ID; 0 if not registered
}

// NodeOption sets optional node attributes at construction
type NodeOption func(*Node)

// WithRealPath records a backing file path
func WithRealPath(p string) NodeOption {
	return func(n *Node) { n.realPath = p }
}

// WithIcon sets the icon registry key
func WithIcon(key string) NodeOption {
	return func(n *Node) { n.iconKey = key }
}

// NewNode creates a detached node.
//
// NOTE: Parent node is responsible for adding itself to the returned Node's
// parent ref when linking as its child (see [Node.AddChild])
func NewNode(name string, kind Kind, label string, opts ...NodeOption) *Node {
	n := &Node{
		name:  name,
		kind:  kind,
		label: label,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewFolder creates a detached Folder node with the standard label and icon
func NewFolder(name string) *Node {
	return NewNode(name, FolderKind, FolderLabel, WithIcon(IconFolder))
}

// NewFile creates a detached File node typed by its extension
func NewFile(name string, opts ...NodeOption) *Node {
	ft := FileTypeFor(name)
	return NewNode(name, FileKind, ft.Label, append([]NodeOption{WithIcon(ft.Icon)}, opts...)...)
}

func (n *Node) Name() string     { return n.name }
func (n *Node) Label() string    { return n.label }
func (n *Node) Kind() Kind       { return n.kind }
func (n *Node) RealPath() string { return n.realPath }
func (n *Node) IconKey() string  { return n.iconKey }
func (n *Node) Parent() *Node    { return n.parent }

// NodeID returns the registry ID of the node; 0 if not registered
func (n *Node) NodeID() uint64 {
	return n.nodeID
}

// IsRoot reports whether the node has no parent
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// Children returns the ordered children in a new slice
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// ChildCount returns the number of direct children
func (n *Node) ChildCount() int {
	return len(n.children)
}

// AddChild appends child as the last child and sets its parent to this node
func (n *Node) AddChild(child *Node) {
	n.children = append(n.children, child)
	child.parent = n
}

// GetChild returns the direct child with exactly this name
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	return findByName(n.children, name)
}

// RemoveChild detaches child; returns false if it is not a direct child
func (n *Node) RemoveChild(child *Node) bool {
	idx := slices.Index(n.children, child)
	if idx < 0 {
		return false
	}
	n.children = slices.Delete(n.children, idx, idx+1)
	child.parent = nil
	return true
}

// IsAncestorOf reports whether n is a strict ancestor of other
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func findByName(nodes []*Node, name string) (*Node, bool) {
	for _, c := range nodes {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

var _ vtree.NodeInfo = (*Node)(nil)
