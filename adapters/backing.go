package adapters

import (
	"fmt"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/google/uuid"

	"github.com/brettbedarf/vtree"
	"github.com/brettbedarf/vtree/internal/util"
)

// BackingStore creates zero-length backing files as <uuid>/<name> so files
// with the same name in different folders never collide
type BackingStore struct {
	fs    billy.Filesystem
	newID func() string

	// ephemeral stores live only in this process; their paths are not
	// returned so they never reach the document or the OS opener
	ephemeral bool
}

func NewBackingStore(fs billy.Filesystem) *BackingStore {
	return &BackingStore{fs: fs, newID: uuid.NewString}
}

// Filesystem returns the underlying store
func (b *BackingStore) Filesystem() billy.Filesystem {
	return b.fs
}

// Ephemeral reports whether created files are process-local
func (b *BackingStore) Ephemeral() bool {
	return b.ephemeral
}

// Materialize creates an empty file for name and returns its real path, or ""
// for an ephemeral store
func (b *BackingStore) Materialize(name string) (string, error) {
	logger := util.GetLogger("Backing.Materialize")

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid backing file name %q", name)
	}

	dir := b.newID()
	if err := b.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backing dir: %w", err)
	}
	rel := b.fs.Join(dir, name)
	f, err := b.fs.Create(rel)
	if err != nil {
		return "", fmt.Errorf("failed to create backing file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	p := b.fs.Join(b.fs.Root(), rel)
	logger.Trace().Str("path", p).Bool("ephemeral", b.ephemeral).Msg("Created backing file")
	if b.ephemeral {
		return "", nil
	}
	return p, nil
}

var _ vtree.Materializer = (*BackingStore)(nil)
