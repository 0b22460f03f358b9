package market

import (
	"nftmarket_go/internal/domain"
	"nftmarket_go/pkg/bps"
)

// UpdatePlatformFee changes the global platform fee rate. Administrator only.
func (m *Marketplace) UpdatePlatformFee(caller string, feeBps uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.cfg.Admin {
		return domain.ErrNotAdmin
	}
	if !bps.Valid(feeBps) {
		return domain.ErrRoyaltyTooHigh
	}
	m.cfg.PlatformFeeBps = feeBps
	return nil
}

// UpdatePlatformFeeRecipient changes where platform fees are paid.
// Administrator only.
func (m *Marketplace) UpdatePlatformFeeRecipient(caller, recipient string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.cfg.Admin {
		return domain.ErrNotAdmin
	}
	if recipient == "" {
		return domain.ErrInvalidAddress
	}
	m.cfg.FeeRecipient = recipient
	return nil
}

// Rebind replaces the marketplace's collaborators as a unit. This is the
// dependency-injection rendition of the original's registry re-pointing.
// Administrator only.
func (m *Marketplace) Rebind(caller string, deps Deps) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.cfg.Admin {
		return domain.ErrNotAdmin
	}
	m.deps = deps
	return nil
}

// TransferAdmin hands the marketplace to a new administrator.
func (m *Marketplace) TransferAdmin(caller, newAdmin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.cfg.Admin {
		return domain.ErrNotAdmin
	}
	if newAdmin == "" {
		return domain.ErrInvalidAddress
	}
	m.cfg.Admin = newAdmin
	return nil
}

// PlatformFee returns the current platform fee rate in basis points.
func (m *Marketplace) PlatformFee() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.PlatformFeeBps
}

// FeeRecipient returns the current platform fee recipient.
func (m *Marketplace) FeeRecipient() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.FeeRecipient
}
