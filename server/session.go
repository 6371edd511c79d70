package server

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/brettbedarf/vtree"
	"github.com/brettbedarf/vtree/adapters"
	"github.com/brettbedarf/vtree/clipboard"
	"github.com/brettbedarf/vtree/config"
	"github.com/brettbedarf/vtree/document"
	"github.com/brettbedarf/vtree/filesystem"
	"github.com/brettbedarf/vtree/internal/util"
	"github.com/brettbedarf/vtree/search"
)

// Session wraps the tree store with its collaborators and serializes every
// call with one mutex. Nodes returned by a Session are read-only to callers.
type Session struct {
	mu     sync.Mutex
	cfg    *config.Config
	fs     *filesystem.FileSystem
	icons  filesystem.IconRegistry
	search *search.Engine
	clip   *clipboard.Coordinator
	opener vtree.Opener

	materializer vtree.Materializer
	searchOpts   search.Options
	server       *fuse.Server
}

// Option customizes a Session at construction
type Option func(*Session)

// WithOpener replaces the OS default handler
func WithOpener(o vtree.Opener) Option {
	return func(s *Session) { s.opener = o }
}

// WithMaterializer replaces the configured backing store
func WithMaterializer(m vtree.Materializer) Option {
	return func(s *Session) { s.materializer = m }
}

// WithIcons replaces the built-in icon registry
func WithIcons(r filesystem.IconRegistry) Option {
	return func(s *Session) { s.icons = r }
}

// WithFuzzySearch switches the search engine to subsequence matching
func WithFuzzySearch(fuzzy bool) Option {
	return func(s *Session) { s.searchOpts.Fuzzy = fuzzy }
}

// New creates a Session with an empty tree. Call [Session.Load] to read the
// configured document.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.icons == nil {
		s.icons = filesystem.DefaultIcons()
	}
	if s.opener == nil {
		s.opener = adapters.NewOSOpener()
	}
	if s.materializer == nil && cfg.MaterializeFiles {
		m, err := adapters.DefaultRegistry().NewMaterializer(cfg.BackingStore, cfg.BackingDir)
		if err != nil {
			return nil, err
		}
		s.materializer = m
	}

	s.fs = filesystem.NewFS(cfg, s.materializer)
	s.search = search.NewEngine(s.searchOpts)
	s.clip = clipboard.NewCoordinator(s.fs, cfg.DropMode)
	return s, nil
}

// Config returns the session configuration
func (s *Session) Config() *config.Config {
	return s.cfg
}

// Load replaces the tree with the configured document. A missing or corrupt
// document installs the demo tree when FallbackToDemo is set. Returns true
// when the demo tree was installed.
func (s *Session) Load() (demo bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := util.GetLogger("Session.Load")

	roots, err := document.LoadFile(s.cfg.DocumentPath, s.icons)
	if err != nil {
		recoverable := errors.Is(err, document.ErrParse) || errors.Is(err, fs.ErrNotExist)
		if !recoverable || !s.cfg.FallbackToDemo {
			logger.Error().Err(err).Str("document", s.cfg.DocumentPath).Msg("Failed to load tree document")
			return false, err
		}
		logger.Warn().Err(err).Str("document", s.cfg.DocumentPath).Msg("Using demo tree")
		roots = filesystem.NewDemoTree()
		demo = true
	}

	s.fs.SetRoots(roots)
	s.search.Reset()
	s.clip.Clear()
	logger.Debug().Str("document", s.cfg.DocumentPath).Int("nodes", s.fs.Len()).Msg("Tree loaded")
	return demo, nil
}

// Save writes the whole tree to the configured document
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return document.SaveFile(s.cfg.DocumentPath, s.fs.Roots(), s.icons)
}

// Document returns the encoded form of the current tree
func (s *Session) Document() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return document.Encode(s.fs.Roots(), s.icons)
}

// Query evaluates a JSONPath expression against the current tree
func (s *Session) Query(expr string) ([]any, error) {
	return document.Query(s.Document(), expr)
}

// Roots returns the root collection
func (s *Session) Roots() []*filesystem.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fs.Roots()
}

// Resolve finds a node by "/" separated path
func (s *Session) Resolve(path string) (*filesystem.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fs.Resolve(path)
}

// Lookup finds a node by NodeID
func (s *Session) Lookup(id uint64) (*filesystem.Node, bool) {
	return s.fs.Lookup(id)
}

// Path returns the "/" separated path of n
func (s *Session) Path(n *filesystem.Node) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fs.Path(n)
}

// DisplayPath returns the " / " separated path of n
func (s *Session) DisplayPath(n *filesystem.Node) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fs.DisplayPath(n)
}

// CreateFolder creates a folder under the node at parentPath
func (s *Session) CreateFolder(parentPath, name string) (*filesystem.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, err := s.fs.Resolve(parentPath)
	if err != nil {
		return nil, err
	}
	return s.fs.CreateFolder(parent, name)
}

// CreateFile creates a file under the node at parentPath
func (s *Session) CreateFile(parentPath, name string) (*filesystem.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, err := s.fs.Resolve(parentPath)
	if err != nil {
		return nil, err
	}
	return s.fs.CreateFile(parent, name)
}

// Delete removes the node at path and its subtree
func (s *Session) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.fs.Resolve(path)
	if err != nil {
		return err
	}
	return s.fs.Delete(n)
}

// Rename renames the node at path
func (s *Session) Rename(path, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.fs.Resolve(path)
	if err != nil {
		return err
	}
	return s.fs.Rename(n, newName)
}

// Copy puts a clone of the node at path on the clipboard
func (s *Session) Copy(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.fs.Resolve(path)
	if err != nil {
		return err
	}
	s.clip.BeginCopy(n)
	return nil
}

// Drag starts dragging the node at path
func (s *Session) Drag(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.fs.Resolve(path)
	if err != nil {
		return err
	}
	s.clip.BeginDrag(n)
	return nil
}

// Pending returns the clipboard payload, if any
func (s *Session) Pending() (*filesystem.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clip.Pending()
}

// Paste pastes the clipboard payload under the node at targetPath
func (s *Session) Paste(targetPath string) (*filesystem.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, err := s.fs.Resolve(targetPath)
	if err != nil {
		return nil, err
	}
	return s.clip.Paste(target)
}

// Drop drops the pending payload onto the node at targetPath
func (s *Session) Drop(targetPath string) (*filesystem.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, err := s.fs.Resolve(targetPath)
	if err != nil {
		return nil, err
	}
	return s.clip.Drop(target)
}

// byID finds a registered node; callers hold s.mu
func (s *Session) byID(id uint64) (*filesystem.Node, error) {
	n, ok := s.fs.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: node %d", filesystem.ErrNotFound, id)
	}
	return n, nil
}

// The *ByID variants address nodes by NodeID. Node names may contain "/" or
// surrounding blanks, so a path does not always lead back to the same node.

// CreateFolderByID creates a folder under the node with NodeID parentID
func (s *Session) CreateFolderByID(parentID uint64, name string) (*filesystem.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, err := s.byID(parentID)
	if err != nil {
		return nil, err
	}
	return s.fs.CreateFolder(parent, name)
}

// CreateFileByID creates a file under the node with NodeID parentID
func (s *Session) CreateFileByID(parentID uint64, name string) (*filesystem.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, err := s.byID(parentID)
	if err != nil {
		return nil, err
	}
	return s.fs.CreateFile(parent, name)
}

func (s *Session) DeleteByID(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.byID(id)
	if err != nil {
		return err
	}
	return s.fs.Delete(n)
}

func (s *Session) RenameByID(id uint64, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.byID(id)
	if err != nil {
		return err
	}
	return s.fs.Rename(n, newName)
}

func (s *Session) CopyByID(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.byID(id)
	if err != nil {
		return err
	}
	s.clip.BeginCopy(n)
	return nil
}

func (s *Session) DragByID(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.byID(id)
	if err != nil {
		return err
	}
	s.clip.BeginDrag(n)
	return nil
}

func (s *Session) PasteByID(targetID uint64) (*filesystem.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, err := s.byID(targetID)
	if err != nil {
		return nil, err
	}
	return s.clip.Paste(target)
}

func (s *Session) DropByID(targetID uint64) (*filesystem.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, err := s.byID(targetID)
	if err != nil {
		return nil, err
	}
	return s.clip.Drop(target)
}

func (s *Session) OpenByID(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.byID(id)
	if err != nil {
		return err
	}
	return s.fs.Open(n, s.opener)
}

// Search runs a new search over the tree
func (s *Session) Search(keyword string) ([]*filesystem.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search.Search(s.fs, keyword)
}

// NextMatch moves the search cursor forward
func (s *Session) NextMatch() (*filesystem.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search.Next()
}

// PrevMatch moves the search cursor back
func (s *Session) PrevMatch() (*filesystem.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search.Prev()
}

// MatchIndex returns the search cursor and the result count
func (s *Session) MatchIndex() (idx, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search.Index(), s.search.Len()
}

// Open opens the backing file of the node at path
func (s *Session) Open(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.fs.Resolve(path)
	if err != nil {
		return err
	}
	return s.fs.Open(n, s.opener)
}

// WriteTree renders the tree as indented lines of "name  [label]". The node
// with NodeID mark, if any, is prefixed with "*".
func (s *Session) WriteTree(w io.Writer, mark uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	s.fs.Walk(func(n *filesystem.Node, depth int) bool {
		prefix := "  "
		if mark != 0 && n.NodeID() == mark {
			prefix = "* "
		}
		_, err = fmt.Fprintf(w, "%s%s%s  [%s]\n", prefix, strings.Repeat("  ", depth), n.Name(), n.Label())
		return err == nil
	})
	return err
}
