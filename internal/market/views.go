package market

import "nftmarket_go/internal/domain"

// Listing returns a copy of the listing record for the composite key.
// Canceled and sold listings read as fully zeroed tombstones.
func (m *Marketplace) Listing(contract string, tokenID uint64, seller string) (domain.Listing, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.listings[domain.ListingKey{Contract: contract, TokenID: tokenID, Seller: seller}]
	if !ok {
		return domain.Listing{}, false
	}
	return *l, true
}

// Offer returns a copy of the offer record for the composite key.
func (m *Marketplace) Offer(contract string, tokenID uint64, offerer string) (domain.Offer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.offers[domain.OfferKey{Contract: contract, TokenID: tokenID, Offerer: offerer}]
	if !ok {
		return domain.Offer{}, false
	}
	return *o, true
}

// CollectionRoyalty returns the collection-level royalty record.
func (m *Marketplace) CollectionRoyalty(contract string) (domain.CollectionRoyalty, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cr, ok := m.collectionRoyalties[contract]
	if !ok {
		return domain.CollectionRoyalty{}, false
	}
	return *cr, true
}

// Minter returns who registered the token-level royalty for a token.
func (m *Marketplace) Minter(contract string, tokenID uint64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	minter, ok := m.minters[domain.TokenKey{Contract: contract, TokenID: tokenID}]
	return minter, ok
}

// Royalty returns the token-level royalty rate for a token, zero if unset.
func (m *Marketplace) Royalty(contract string, tokenID uint64) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.royalties[domain.TokenKey{Contract: contract, TokenID: tokenID}]
}
