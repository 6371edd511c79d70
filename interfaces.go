// Package vtree contains the collaborator interfaces the virtual file tree
// calls into. Concrete implementations live in the adapters package.
package vtree

// Opener opens a real on-disk file with the operating system's default handler.
// It only reports whether the handler accepted the path.
type Opener interface {
	Open(path string) bool
}

// Materializer creates zero-length backing files for new file nodes.
// Implementations return the real path of the created file.
type Materializer interface {
	Materialize(name string) (string, error)
}

// ClipboardWriter places text on the system clipboard
type ClipboardWriter interface {
	WriteAll(text string) error
}
