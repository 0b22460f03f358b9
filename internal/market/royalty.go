package market

import (
	"nftmarket_go/internal/domain"
	"nftmarket_go/pkg/bps"
)

// RegisterCollectionRoyalty sets or overwrites the collection-level royalty
// record. Administrator only.
func (m *Marketplace) RegisterCollectionRoyalty(caller, contract, creator string, royaltyBps uint64, feeRecipient string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.cfg.Admin {
		return domain.ErrNotAdmin
	}
	if creator == "" || feeRecipient == "" {
		return domain.ErrInvalidAddress
	}
	if !bps.Valid(royaltyBps) || royaltyBps > m.cfg.MaxRoyaltyBps {
		return domain.ErrRoyaltyTooHigh
	}

	m.collectionRoyalties[contract] = &domain.CollectionRoyalty{
		Contract:     contract,
		Creator:      creator,
		RoyaltyBps:   royaltyBps,
		FeeRecipient: feeRecipient,
	}
	return nil
}

// RegisterRoyalty sets the token-level royalty for a single token. The
// collection must be recognized by the factory, the caller must currently
// own the token, and a token's royalty can be registered only once. The
// caller is recorded as the token's royalty minter and receives the royalty
// on every subsequent sale.
func (m *Marketplace) RegisterRoyalty(caller, contract string, tokenID uint64, royaltyBps uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.deps.Factory.Exists(contract) {
		return domain.ErrCollectionNotRecognized
	}
	if !bps.Valid(royaltyBps) || royaltyBps > m.cfg.MaxRoyaltyBps {
		return domain.ErrRoyaltyTooHigh
	}

	nft, ok := m.deps.Assets.Resolve(contract)
	if !ok {
		return domain.ErrContractNotFound
	}
	owner, err := nft.OwnerOf(tokenID)
	if err != nil {
		return domain.NewTransferError("resolve owner", err)
	}
	if owner != caller {
		return domain.ErrNotOwnerOrApproved
	}

	key := domain.TokenKey{Contract: contract, TokenID: tokenID}
	if _, exists := m.royalties[key]; exists {
		return domain.ErrRoyaltyAlreadySet
	}
	m.royalties[key] = royaltyBps
	m.minters[key] = caller
	return nil
}

// RoyaltyInfo resolves the royalty for a token: the token-level
// registration wins, then the collection record, else zero. Implements
// domain.RoyaltySource for the auction engine.
func (m *Marketplace) RoyaltyInfo(contract string, tokenID uint64) (string, uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.royaltyInfo(contract, tokenID)
}

// royaltyInfo must be called with the lock held (read or write).
func (m *Marketplace) royaltyInfo(contract string, tokenID uint64) (string, uint64, bool) {
	key := domain.TokenKey{Contract: contract, TokenID: tokenID}
	if rate, ok := m.royalties[key]; ok {
		return m.minters[key], rate, true
	}
	if cr, ok := m.collectionRoyalties[contract]; ok {
		return cr.FeeRecipient, cr.RoyaltyBps, true
	}
	return "", 0, false
}
