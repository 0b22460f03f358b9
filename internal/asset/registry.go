package asset

import (
	"sync"

	"nftmarket_go/internal/domain"
)

// Registry maps asset-contract addresses to their live contracts, the Go
// stand-in for on-chain address dereference. Any deployed collection can be
// registered here whether or not the factory recognizes it.
type Registry struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

// NewRegistry creates an empty asset registry.
func NewRegistry() *Registry {
	return &Registry{collections: make(map[string]*Collection)}
}

// Register adds a deployed collection under its address.
func (r *Registry) Register(c *Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.collections[c.Address()]; ok {
		return domain.ErrContractExists
	}
	r.collections[c.Address()] = c
	return nil
}

// Resolve returns the contract behind an address.
func (r *Registry) Resolve(contract string) (domain.AssetContract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[contract]
	if !ok {
		return nil, false
	}
	return c, true
}

// Collection returns the concrete collection behind an address.
func (r *Registry) Collection(contract string) (*Collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[contract]
	return c, ok
}

// Addresses lists every registered contract address.
func (r *Registry) Addresses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.collections))
	for addr := range r.collections {
		out = append(out, addr)
	}
	return out
}
