// Package registry holds the two administrative registries: the payment
// token allow-list and the service address book. Both follow last-write-wins
// with every mutation gated to the administrator.
package registry

import (
	"sync"

	"nftmarket_go/internal/domain"
)

// TokenRegistry is the allow-list of payment tokens the engines accept.
type TokenRegistry struct {
	mu      sync.RWMutex
	admin   string
	enabled map[string]bool
}

// NewTokenRegistry creates an empty allow-list owned by admin.
func NewTokenRegistry(admin string) *TokenRegistry {
	return &TokenRegistry{
		admin:   admin,
		enabled: make(map[string]bool),
	}
}

// Add enables a payment token. Rejected if already enabled.
func (r *TokenRegistry) Add(caller, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.admin {
		return domain.ErrNotAdmin
	}
	if r.enabled[token] {
		return domain.ErrTokenAlreadyAdded
	}
	r.enabled[token] = true
	return nil
}

// Remove disables a payment token. Rejected if not enabled.
func (r *TokenRegistry) Remove(caller, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.admin {
		return domain.ErrNotAdmin
	}
	if !r.enabled[token] {
		return domain.ErrTokenNotFound
	}
	delete(r.enabled, token)
	return nil
}

// Enabled is the pure lookup consulted on every listing/offer/auction.
func (r *TokenRegistry) Enabled(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[token]
}

// TransferAdmin hands the registry to a new administrator.
func (r *TokenRegistry) TransferAdmin(caller, newAdmin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.admin {
		return domain.ErrNotAdmin
	}
	if newAdmin == "" {
		return domain.ErrInvalidAddress
	}
	r.admin = newAdmin
	return nil
}
