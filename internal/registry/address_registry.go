package registry

import (
	"sync"

	"nftmarket_go/internal/domain"
)

// AddressRegistry is the authoritative address book for the deployed
// services. The engines themselves are wired by dependency injection; the
// book records which addresses those references correspond to, and the
// bootstrap consults it when rebinding.
type AddressRegistry struct {
	mu    sync.RWMutex
	admin string

	marketplace   string
	auction       string
	factory       string
	tokenRegistry string
	priceFeed     string
}

// NewAddressRegistry creates an empty address book owned by admin.
func NewAddressRegistry(admin string) *AddressRegistry {
	return &AddressRegistry{admin: admin}
}

func (r *AddressRegistry) update(caller string, slot *string, addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.admin {
		return domain.ErrNotAdmin
	}
	if addr == "" {
		return domain.ErrInvalidAddress
	}
	*slot = addr
	return nil
}

// UpdateMarketplace records the marketplace address.
func (r *AddressRegistry) UpdateMarketplace(caller, addr string) error {
	return r.update(caller, &r.marketplace, addr)
}

// UpdateAuction records the auction address.
func (r *AddressRegistry) UpdateAuction(caller, addr string) error {
	return r.update(caller, &r.auction, addr)
}

// UpdateFactory records the collection factory address.
func (r *AddressRegistry) UpdateFactory(caller, addr string) error {
	return r.update(caller, &r.factory, addr)
}

// UpdateTokenRegistry records the token registry address.
func (r *AddressRegistry) UpdateTokenRegistry(caller, addr string) error {
	return r.update(caller, &r.tokenRegistry, addr)
}

// UpdatePriceFeed records the price feed address.
func (r *AddressRegistry) UpdatePriceFeed(caller, addr string) error {
	return r.update(caller, &r.priceFeed, addr)
}

// Marketplace returns the recorded marketplace address.
func (r *AddressRegistry) Marketplace() string { return r.read(&r.marketplace) }

// Auction returns the recorded auction address.
func (r *AddressRegistry) Auction() string { return r.read(&r.auction) }

// Factory returns the recorded factory address.
func (r *AddressRegistry) Factory() string { return r.read(&r.factory) }

// TokenRegistry returns the recorded token registry address.
func (r *AddressRegistry) TokenRegistry() string { return r.read(&r.tokenRegistry) }

// PriceFeed returns the recorded price feed address.
func (r *AddressRegistry) PriceFeed() string { return r.read(&r.priceFeed) }

func (r *AddressRegistry) read(slot *string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *slot
}

// TransferAdmin hands the address book to a new administrator.
func (r *AddressRegistry) TransferAdmin(caller, newAdmin string) error {
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
