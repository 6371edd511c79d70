// Package clipboard holds the single copy/drag payload slot and validates
// paste and drop targets before handing mutations to the tree store.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/brettbedarf/vtree/config"
	"github.com/brettbedarf/vtree/filesystem"
	"github.com/brettbedarf/vtree/internal/util"
)

// ErrRejectedDrop wraps every drop validation failure. A rejected drop
// leaves the tree unchanged.
var ErrRejectedDrop = errors.New("drop rejected")

// Drop rejection reasons
var (
	ErrNotFolder       = errors.New("target is not a folder")
	ErrNoPayload       = errors.New("nothing copied or dragged")
	ErrDropOntoSelf    = errors.New("target is the dragged node")
	ErrDropOntoParent  = errors.New("target is already the parent")
	ErrDropIntoSubtree = errors.New("target is inside the dragged node")
)

// Tree is the part of [filesystem.FileSystem] the coordinator mutates
type Tree interface {
	DeepClone(n *filesystem.Node) *filesystem.Node
	Paste(target, clone *filesystem.Node) error
	Move(target, n *filesystem.Node) error
}

// Coordinator owns one payload slot shared by copy and drag. Starting either
// replaces whatever was pending.
type Coordinator struct {
	tree     Tree
	mode     string
	payload  *filesystem.Node // clone for copy, the node itself for drag
	source   *filesystem.Node // node the payload was taken from
	dragging bool
}

// NewCoordinator creates an empty coordinator. mode is [config.DropCopy] or
// [config.DropMove]; anything else is treated as copy.
func NewCoordinator(tree Tree, mode string) *Coordinator {
	return &Coordinator{tree: tree, mode: mode}
}

// BeginCopy snapshots a deep clone of n as the payload
func (c *Coordinator) BeginCopy(n *filesystem.Node) {
	logger := util.GetLogger("Clipboard.Copy")

	c.payload = c.tree.DeepClone(n)
	c.source = n
	c.dragging = false
	logger.Debug().Str("name", n.Name()).Msg("Copied node")
}

// BeginDrag records n itself as the payload
func (c *Coordinator) BeginDrag(n *filesystem.Node) {
	logger := util.GetLogger("Clipboard.Drag")

	c.payload = n
	c.source = n
	c.dragging = true
	logger.Debug().Str("name", n.Name()).Msg("Started drag")
}

// Pending returns the payload, if any
func (c *Coordinator) Pending() (*filesystem.Node, bool) {
	return c.payload, c.payload != nil
}

// Dragging reports whether the payload came from [Coordinator.BeginDrag]
func (c *Coordinator) Dragging() bool {
	return c.payload != nil && c.dragging
}

// Clear drops the payload
func (c *Coordinator) Clear() {
	c.payload = nil
	c.source = nil
	c.dragging = false
}

// ValidateDrop checks target against dragged in order: target kind, pending
// payload, self, current parent. In move mode a target inside dragged's
// subtree is rejected too.
func (c *Coordinator) ValidateDrop(target, dragged *filesystem.Node) error {
	switch {
	case target == nil || target.Kind() != filesystem.FolderKind:
		return fmt.Errorf("%w: %w", ErrRejectedDrop, ErrNotFolder)
	case c.payload == nil || dragged == nil:
		return fmt.Errorf("%w: %w", ErrRejectedDrop, ErrNoPayload)
	case target == dragged:
		return fmt.Errorf("%w: %w", ErrRejectedDrop, ErrDropOntoSelf)
	case dragged.Parent() == target:
		return fmt.Errorf("%w: %w", ErrRejectedDrop, ErrDropOntoParent)
	case c.moving() && dragged.IsAncestorOf(target):
		return fmt.Errorf("%w: %w", ErrRejectedDrop, ErrDropIntoSubtree)
	}
	return nil
}

func (c *Coordinator) moving() bool {
	return c.mode == config.DropMove && c.dragging
}

// Drop places the payload under target. In copy mode a fresh deep clone is
// pasted and the source stays where it is. In move mode a dragged node is
// detached from its parent and the slot is cleared. Returns the node now
// under target.
func (c *Coordinator) Drop(target *filesystem.Node) (*filesystem.Node, error) {
	logger := util.GetLogger("Clipboard.Drop")

	if err := c.ValidateDrop(target, c.source); err != nil {
		logger.Debug().Err(err).Msg("Ignored drop")
		return nil, err
	}

	if c.moving() {
		n := c.payload
		if err := c.tree.Move(target, n); err != nil {
			return nil, err
		}
		c.Clear()
		logger.Debug().Str("name", n.Name()).Str("target", target.Name()).Msg("Moved dragged node")
		return n, nil
	}

	clone := c.tree.DeepClone(c.payload)
	if err := c.tree.Paste(target, clone); err != nil {
		return nil, err
	}
	logger.Debug().Str("name", clone.Name()).Str("target", target.Name()).Msg("Dropped copy")
	return clone, nil
}

// Paste appends a deep clone of the payload under target, so one payload
// can be pasted repeatedly
func (c *Coordinator) Paste(target *filesystem.Node) (*filesystem.Node, error) {
	logger := util.GetLogger("Clipboard.Paste")

	if c.payload == nil {
		return nil, ErrNoPayload
	}
	clone := c.tree.DeepClone(c.payload)
	if err := c.tree.Paste(target, clone); err != nil {
		return nil, err
	}
	logger.Debug().Str("name", clone.Name()).Str("target", target.Name()).Msg("Pasted payload")
	return clone, nil
}
