package adapters

import (
	"fmt"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/brettbedarf/vtree/config"
)

type BuiltInStoreType = string

const (
	OSStoreType     BuiltInStoreType = config.OSBackingStore
	MemoryStoreType BuiltInStoreType = config.MemoryBackingStore
)

// RegisterBuiltins registers all built-in stores by default
// or only the specific ones if keys are provided
func RegisterBuiltins(r *Registry, stores ...BuiltInStoreType) {
	if len(stores) == 0 {
		stores = append(stores, OSStoreType, MemoryStoreType)
	}

	for _, key := range stores {
		switch key {
		case OSStoreType:
			r.Register(OSStoreType, StoreProviderFunc(newOSStore))
		case MemoryStoreType:
			r.Register(MemoryStoreType, StoreProviderFunc(newMemoryStore))
		}
	}
}

// DefaultRegistry returns a registry with every built-in store
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// newOSStore roots an OS store at the absolute form of dir so recorded paths
// can be handed to the OS opener from any working directory
func newOSStore(dir string) (billy.Filesystem, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid backing dir %q: %w", dir, err)
	}
	return osfs.New(abs), nil
}

// newMemoryStore ignores dir. Its paths are only meaningful inside the
// process, so it is meant for tests and dry runs.
func newMemoryStore(string) (billy.Filesystem, error) {
	return memfs.New(), nil
}
