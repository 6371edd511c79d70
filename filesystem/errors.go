package filesystem

import "errors"

// Structural edit errors. All are recoverable: the operation is rejected and
// the tree is left unchanged.
var (
	// ErrDuplicateName indicates a sibling with the same name already exists.
	ErrDuplicateName = errors.New("name already exists")

	// ErrInvalidTarget indicates the target cannot hold children.
	ErrInvalidTarget = errors.New("target is not a folder")

	// ErrNotDeletable indicates an attempt to delete a root node.
	ErrNotDeletable = errors.New("node is not deletable")

	// ErrNoOp indicates a rename to the same or a blank name.
	ErrNoOp = errors.New("no change")

	// ErrNotFound indicates a path or node ID that does not resolve.
	ErrNotFound = errors.New("node not found")
)

// Open errors
var (
	// ErrNotOpenable indicates a System, Drive or Folder node.
	ErrNotOpenable = errors.New("only files can be opened")

	// ErrNoBackingPath indicates a file node without a real path.
	ErrNoBackingPath = errors.New("file has no backing path")

	// ErrOpenFailed indicates the OS handler refused the path.
	ErrOpenFailed = errors.New("failed to open file")
)
