package filesystem

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brettbedarf/vtree"
	"github.com/brettbedarf/vtree/config"
	"github.com/brettbedarf/vtree/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

// DisplaySeparator joins names in [FileSystem.DisplayPath]
const DisplaySeparator = " / "

// FileSystem is the tree store: it owns the root collection and performs every
// structural edit. Validation always runs target kind check, then duplicate
// name check, then mutation, so a rejected edit never changes the tree.
type FileSystem struct {
	cfg          *config.Config
	roots        []*Node                   // Root collection; roots are siblings of each other
	lastNodeID   atomic.Uint64             // Last registry NodeID assigned
	nodeRegistry *xsync.Map[uint64, *Node] // maps registry NodeIDs to attached Nodes
	materializer vtree.Materializer        // optional; nil disables backing files
}

// NewFS creates an empty tree store. m may be nil.
func NewFS(cfg *config.Config, m vtree.Materializer) *FileSystem {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return &FileSystem{
		cfg:          cfg,
		nodeRegistry: xsync.NewMap[uint64, *Node](),
		materializer: m,
	}
}

// Roots returns the root collection in a new slice
func (fs *FileSystem) Roots() []*Node {
	return slices.Clone(fs.roots)
}

// SetRoots replaces the whole tree. The previous tree is torn down first.
func (fs *FileSystem) SetRoots(roots []*Node) {
	fs.Teardown()
	for _, r := range roots {
		r.parent = nil
		fs.roots = append(fs.roots, r)
		fs.register(r)
	}
}

// AddRoot appends n to the root collection
func (fs *FileSystem) AddRoot(n *Node) error {
	if _, dup := findByName(fs.roots, n.name); dup {
		return fmt.Errorf("%w: root %q", ErrDuplicateName, n.name)
	}
	n.parent = nil
	fs.roots = append(fs.roots, n)
	fs.register(n)
	return nil
}

// Teardown detaches every node and clears the registry
func (fs *FileSystem) Teardown() {
	for _, r := range fs.roots {
		fs.unregister(r)
	}
	fs.roots = nil
}

// Len returns the number of registered nodes
func (fs *FileSystem) Len() int {
	return fs.nodeRegistry.Size()
}

// Lookup returns the attached node registered under id
func (fs *FileSystem) Lookup(id uint64) (*Node, bool) {
	return fs.nodeRegistry.Load(id)
}

// Resolve finds a node by its names from the root joined with "/".
// Blanks around each segment are ignored so [FileSystem.DisplayPath] output
// resolves as well.
func (fs *FileSystem) Resolve(path string) (*Node, error) {
	var cur *Node
	siblings := fs.roots
	for _, seg := range strings.Split(path, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		next, ok := findByName(siblings, seg)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
		}
		cur = next
		siblings = next.children
	}
	if cur == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	return cur, nil
}

// Walk visits every node depth-first in pre-order, children left to right.
// Returning false from fn stops the walk.
func (fs *FileSystem) Walk(fn func(n *Node, depth int) bool) {
	walk(fs.roots, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(n *Node, depth int) bool) bool {
	for _, n := range nodes {
		if !fn(n, depth) {
			return false
		}
		if !walk(n.children, depth+1, fn) {
			return false
		}
	}
	return true
}

// DisplayPath returns the names from the root down to n joined by " / "
func (fs *FileSystem) DisplayPath(n *Node) string {
	return strings.Join(names(n), DisplaySeparator)
}

// Path returns the names from the root down to n joined by "/"
func (fs *FileSystem) Path(n *Node) string {
	return strings.Join(names(n), "/")
}

func names(n *Node) []string {
	var parts []string
	for cur := n; cur != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	slices.Reverse(parts)
	return parts
}

// CreateFolder adds a new Folder under parent. A non-Folder parent is
// retargeted to its own parent first.
func (fs *FileSystem) CreateFolder(parent *Node, name string) (*Node, error) {
	logger := util.GetLogger("FS.CreateFolder")

	target, err := fs.createTarget(parent, name)
	if err != nil {
		logger.Debug().Err(err).Str("name", name).Msg("Rejected folder creation")
		return nil, err
	}

	node := NewFolder(name)
	target.AddChild(node)
	fs.register(node)
	logger.Debug().Str("path", fs.Path(node)).Msg("Added new folder node")
	return node, nil
}

// CreateFile adds a new File under parent using the same retargeting rule as
// [FileSystem.CreateFolder]. The label and icon come from the extension. When
// materialization is enabled a zero-length backing file is created; failing
// to create it leaves the node without a real path.
func (fs *FileSystem) CreateFile(parent *Node, name string) (*Node, error) {
	logger := util.GetLogger("FS.CreateFile")

	target, err := fs.createTarget(parent, name)
	if err != nil {
		logger.Debug().Err(err).Str("name", name).Msg("Rejected file creation")
		return nil, err
	}

	var opts []NodeOption
	if fs.cfg.MaterializeFiles && fs.materializer != nil {
		if p, err := fs.materializer.Materialize(name); err != nil {
			logger.Warn().Err(err).Str("name", name).Msg("Failed to materialize backing file")
		} else {
			opts = append(opts, WithRealPath(p))
		}
	}

	node := NewFile(name, opts...)
	target.AddChild(node)
	fs.register(node)
	logger.Debug().Str("path", fs.Path(node)).Str("realPath", node.realPath).Msg("Added new file node")
	return node, nil
}

func (fs *FileSystem) createTarget(parent *Node, name string) (*Node, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: no parent", ErrInvalidTarget)
	}
	target := parent
	if target.kind != FolderKind {
		target = target.parent
	}
	if target == nil || !target.kind.IsContainer() {
		return nil, fmt.Errorf("%w: nowhere to create inside %q", ErrInvalidTarget, parent.name)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", ErrInvalidTarget)
	}
	if _, dup := target.GetChild(name); dup {
		return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateName, name, target.name)
	}
	return target, nil
}

// Delete removes n and its subtree. Root nodes are not deletable.
func (fs *FileSystem) Delete(n *Node) error {
	logger := util.GetLogger("FS.Delete")

	if n.parent == nil {
		err := fmt.Errorf("%w: %q is a root node", ErrNotDeletable, n.name)
		logger.Debug().Err(err).Msg("Rejected delete")
		return err
	}
	path := fs.Path(n)
	n.parent.RemoveChild(n)
	fs.unregister(n)
	logger.Debug().Str("path", path).Msg("Deleted node")
	return nil
}

// Rename changes n's name in place. The node keeps its identity.
func (fs *FileSystem) Rename(n *Node, newName string) error {
	logger := util.GetLogger("FS.Rename")

	if strings.TrimSpace(newName) == "" || newName == n.name {
		return fmt.Errorf("%w: rename %q to %q", ErrNoOp, n.name, newName)
	}
	if _, dup := findByName(fs.siblings(n), newName); dup {
		err := fmt.Errorf("%w: %q", ErrDuplicateName, newName)
		logger.Debug().Err(err).Str("path", fs.Path(n)).Msg("Rejected rename")
		return err
	}
	logger.Debug().Str("path", fs.Path(n)).Str("newName", newName).Msg("Renamed node")
	n.name = newName
	return nil
}

func (fs *FileSystem) siblings(n *Node) []*Node {
	if n.parent == nil {
		return fs.roots
	}
	return n.parent.children
}

// DeepClone duplicates n and its subtree. The clone is detached, unregistered
// and shares nothing with the original.
func (fs *FileSystem) DeepClone(n *Node) *Node {
	return deepClone(n)
}

func deepClone(n *Node) *Node {
	c := &Node{
		name:     n.name,
		label:    n.label,
		kind:     n.kind,
		realPath: n.realPath,
		iconKey:  n.iconKey,
	}
	if len(n.children) > 0 {
		c.children = make([]*Node, 0, len(n.children))
		for _, ch := range n.children {
			cc := deepClone(ch)
			cc.parent = c
			c.children = append(c.children, cc)
		}
	}
	return c
}

// Paste appends a detached clone as the last child of target, which must be a
// Folder without a child of the same name.
func (fs *FileSystem) Paste(target, clone *Node) error {
	logger := util.GetLogger("FS.Paste")

	if target == nil || target.kind != FolderKind {
		err := fmt.Errorf("%w: paste target", ErrInvalidTarget)
		logger.Debug().Err(err).Msg("Rejected paste")
		return err
	}
	if _, dup := target.GetChild(clone.name); dup {
		err := fmt.Errorf("%w: %q in %q", ErrDuplicateName, clone.name, target.name)
		logger.Debug().Err(err).Msg("Rejected paste")
		return err
	}
	target.AddChild(clone)
	fs.register(clone)
	logger.Debug().Str("path", fs.Path(clone)).Msg("Pasted node")
	return nil
}

// Move detaches n from its parent and appends it under target. The node and
// its subtree keep their identities.
func (fs *FileSystem) Move(target, n *Node) error {
	logger := util.GetLogger("FS.Move")

	if target == nil || target.kind != FolderKind {
		return fmt.Errorf("%w: move target", ErrInvalidTarget)
	}
	if target == n || n.IsAncestorOf(target) {
		return fmt.Errorf("%w: cannot move %q into itself", ErrInvalidTarget, n.name)
	}
	if n.parent == nil {
		return fmt.Errorf("%w: %q is a root node", ErrNotDeletable, n.name)
	}
	if n.parent == target {
		return fmt.Errorf("%w: %q is already in %q", ErrNoOp, n.name, target.name)
	}
	if _, dup := target.GetChild(n.name); dup {
		return fmt.Errorf("%w: %q in %q", ErrDuplicateName, n.name, target.name)
	}
	from := fs.Path(n)
	n.parent.RemoveChild(n)
	target.AddChild(n)
	logger.Debug().Str("from", from).Str("to", fs.Path(n)).Msg("Moved node")
	return nil
}

// Open hands a file's backing path to opener
func (fs *FileSystem) Open(n *Node, opener vtree.Opener) error {
	logger := util.GetLogger("FS.Open")

	if n.kind.IsContainer() {
		return fmt.Errorf("%w: %q is a %s", ErrNotOpenable, n.name, n.kind)
	}
	if n.realPath == "" {
		return fmt.Errorf("%w: %q", ErrNoBackingPath, n.name)
	}
	if !opener.Open(n.realPath) {
		logger.Warn().Str("realPath", n.realPath).Msg("OS handler refused file")
		return fmt.Errorf("%w: %s", ErrOpenFailed, n.realPath)
	}
	return nil
}

// register assigns NodeIDs to n and every descendant that has none
func (fs *FileSystem) register(n *Node) {
	if n.nodeID == 0 {
		n.nodeID = fs.lastNodeID.Add(1)
	}
	fs.nodeRegistry.Store(n.nodeID, n)
	for _, c := range n.children {
		fs.register(c)
	}
}

// unregister removes n's subtree from the registry and zeroes the IDs
func (fs *FileSystem) unregister(n *Node) {
	if n.nodeID != 0 {
		fs.nodeRegistry.Delete(n.nodeID)
		n.nodeID = 0
	}
	for _, c := range n.children {
		fs.unregister(c)
	}
}

// DefaultFolderName returns a generated folder name for callers without a name prompt
func DefaultFolderName(t time.Time) string {
	return "New Folder" + strconv.FormatInt(t.Unix(), 10)
}

// DefaultFileName returns a generated file name with the given extension
func DefaultFileName(t time.Time, ext string) string {
	return "New File" + strconv.FormatInt(t.Unix(), 10) + "." + strings.TrimPrefix(ext, ".")
}
