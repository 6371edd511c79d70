package server

import (
	"context"
	"fmt"
	"strings"
	"syscall"

	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/brettbedarf/vtree/filesystem"
	"github.com/brettbedarf/vtree/internal/util"
)

type entryType int

const (
	dirEntry entryType = iota
	fileEntry
	linkEntry
)

// mountEntry is one inode of the mounted view. Entries are ordered so every
// parent precedes its children.
type mountEntry struct {
	parent int // index into the plan; -1 for the mount root
	name   string
	typ    entryType
	target string // symlink target for linkEntry
}

// mountPlan flattens roots into the mounted view: containers become
// directories, files with a backing path become symlinks to it, and other
// files become empty read-only files. Names that collide after sanitizing
// get a " (2)", " (3)", ... suffix.
func mountPlan(roots []*filesystem.Node) []mountEntry {
	logger := util.GetLogger("Mount.Plan")

	var plan []mountEntry
	taken := map[int]map[string]bool{}
	var add func(n *filesystem.Node, parent int)
	add = func(n *filesystem.Node, parent int) {
		name := claimName(taken, parent, fuseName(n.Name()))
		if name != fuseName(n.Name()) {
			logger.Warn().Str("name", n.Name()).Str("entry", name).Msg("Entry name collides with a sibling")
		}
		e := mountEntry{parent: parent, name: name}
		switch {
		case n.Kind().IsContainer():
			e.typ = dirEntry
		case n.RealPath() != "":
			e.typ = linkEntry
			e.target = n.RealPath()
		default:
			e.typ = fileEntry
		}
		plan = append(plan, e)
		idx := len(plan) - 1
		for _, c := range n.Children() {
			add(c, idx)
		}
	}
	for _, r := range roots {
		add(r, -1)
	}
	return plan
}

// fuseName makes a node name usable as a directory entry
func fuseName(name string) string {
	switch name {
	case "", ".", "..":
		return "_" + name
	}
	return strings.ReplaceAll(name, "/", "_")
}

// claimName reserves name among the entries under parent, adding a numeric
// suffix when it is already used
func claimName(taken map[int]map[string]bool, parent int, name string) string {
	names := taken[parent]
	if names == nil {
		names = map[string]bool{}
		taken[parent] = names
	}
	cand := name
	for i := 2; names[cand]; i++ {
		cand = fmt.Sprintf("%s (%d)", name, i)
	}
	names[cand] = true
	return cand
}

// viewRoot is the mount root; it builds the whole view once on mount
type viewRoot struct {
	fusefs.Inode
	plan []mountEntry
}

var _ = (fusefs.NodeOnAdder)((*viewRoot)(nil))
var _ = (fusefs.NodeGetattrer)((*viewRoot)(nil))

func (r *viewRoot) OnAdd(ctx context.Context) {
	inodes := make([]*fusefs.Inode, len(r.plan))
	for i, e := range r.plan {
		parent := &r.Inode
		if e.parent >= 0 {
			parent = inodes[e.parent]
		}

		var ch *fusefs.Inode
		switch e.typ {
		case dirEntry:
			ch = parent.NewPersistentInode(ctx, &fusefs.Inode{}, fusefs.StableAttr{Mode: fuse.S_IFDIR})
		case linkEntry:
			ch = parent.NewPersistentInode(ctx, &fusefs.MemSymlink{Data: []byte(e.target)},
				fusefs.StableAttr{Mode: fuse.S_IFLNK})
		default:
			ch = parent.NewPersistentInode(ctx, &fusefs.MemRegularFile{Attr: fuse.Attr{Mode: 0o444}},
				fusefs.StableAttr{Mode: fuse.S_IFREG})
		}
		// names are made unique by mountPlan
		if !parent.AddChild(e.name, ch, false) {
			logger := util.GetLogger("Mount.OnAdd")
			logger.Error().Str("entry", e.name).Msg("Duplicate entry dropped from view")
		}
		inodes[i] = ch
	}
}

func (r *viewRoot) Getattr(ctx context.Context, fh fusefs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0o555
	return 0
}

// Serve mounts a read-only view of the current tree at mountPoint and returns
// once the mount is ready. Later edits are not reflected in the mounted view.
func (s *Session) Serve(mountPoint string) error {
	logger := util.GetLogger("Session.Serve")

	s.mu.Lock()
	root := &viewRoot{plan: mountPlan(s.fs.Roots())}
	s.mu.Unlock()

	opts := s.cfg.MountOptions
	srv, err := fusefs.Mount(mountPoint, root, &fusefs.Options{
		MountOptions: fuse.MountOptions{
			Name:   opts.Name,
			FsName: opts.FsName,
			Debug:  opts.Debug || s.cfg.LogLvl == util.TraceLevel,
			Logger: util.NewLogLogger("FuseServer", util.TraceLevel),
		},
	})
	if err != nil {
		logger.Error().Err(err).Str("mountpoint", mountPoint).Msg("Failed to mount tree")
		return err
	}

	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()
	logger.Info().Str("mountpoint", mountPoint).Int("entries", len(root.plan)).Msg("Tree mounted")
	return nil
}

// Wait blocks until the mounted view is unmounted
func (s *Session) Wait() {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv != nil {
		srv.Wait()
	}
}

// Unmount cleanly unmounts the view.
func (s *Session) Unmount() error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Unmount()
}
