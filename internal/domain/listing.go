package domain

import "math/big"

// Listing is a seller's standing offer to sell a quantity of one asset at a
// fixed per-item price. While Quantity > 0 the asset sits in marketplace
// escrow; a zeroed record is the "not listed" tombstone, kept in place so
// lookups after cancellation return fully zeroed fields.
type Listing struct {
	Contract     string   `json:"contract"`
	TokenID      uint64   `json:"token_id"`
	Seller       string   `json:"seller"`
	Quantity     uint64   `json:"quantity"`
	PayToken     string   `json:"pay_token"`
	PricePerItem *big.Int `json:"price_per_item"`
	StartingTime int64    `json:"starting_time"` // unix seconds; buyable at or after
}

// Active reports whether the listing currently escrows the asset.
func (l *Listing) Active() bool {
	return l != nil && l.Quantity > 0
}

// Tombstone zeroes every field except the composite key. All-or-nothing:
// a partially zeroed listing must never be observable.
func (l *Listing) Tombstone() {
	l.Quantity = 0
	l.PayToken = ""
	l.PricePerItem = big.NewInt(0)
	l.StartingTime = 0
}

// ListingKey is the composite identity of a listing.
type ListingKey struct {
	Contract string
	TokenID  uint64
	Seller   string
}
