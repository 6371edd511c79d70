package adapters

import (
	"fmt"
	"sync"

	billy "github.com/go-git/go-billy/v5"
)

// StoreProvider opens the billy filesystem backing files are created in
type StoreProvider interface {
	NewStore(dir string) (billy.Filesystem, error)
}

// StoreProviderFunc adapts a plain function to [StoreProvider]
type StoreProviderFunc func(dir string) (billy.Filesystem, error)

func (f StoreProviderFunc) NewStore(dir string) (billy.Filesystem, error) {
	return f(dir)
}

// Registry maps backing store type keys to providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]StoreProvider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]StoreProvider{}}
}

// Register ties a provider to a store type key. The first registration for a
// key wins.
func (r *Registry) Register(storeType string, p StoreProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[storeType]; ok {
		return
	}
	r.providers[storeType] = p
}

// GetProvider returns the provider registered for storeType
func (r *Registry) GetProvider(storeType string) (StoreProvider, error) {
	r.mu.RLock()
	p, ok := r.providers[storeType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no backing store for %q", storeType)
	}
	return p, nil
}

// NewMaterializer opens the storeType store rooted at dir and wraps it in a
// [BackingStore]. The memory store is ephemeral: files are created but no
// real path is recorded on the node.
func (r *Registry) NewMaterializer(storeType, dir string) (*BackingStore, error) {
	p, err := r.GetProvider(storeType)
	if err != nil {
		return nil, err
	}
	fs, err := p.NewStore(dir)
	if err != nil {
		return nil, err
	}
	b := NewBackingStore(fs)
	b.ephemeral = storeType == MemoryStoreType
	return b, nil
}
