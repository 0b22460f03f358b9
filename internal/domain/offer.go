package domain

import "math/big"

// Offer is a prospective buyer's standing bid on a specific asset. No funds
// are escrowed at creation; balance and allowance are checked when the owner
// accepts. Executable only while the clock is strictly before Deadline.
type Offer struct {
	Contract     string   `json:"contract"`
	TokenID      uint64   `json:"token_id"`
	Offerer      string   `json:"offerer"`
	PayToken     string   `json:"pay_token"`
	Quantity     uint64   `json:"quantity"`
	PricePerItem *big.Int `json:"price_per_item"`
	Deadline     int64    `json:"deadline"` // unix seconds, exclusive
}

// Active reports whether the offer is still standing (not yet a tombstone).
func (o *Offer) Active() bool {
	return o != nil && o.Quantity > 0
}

// Expired reports whether the offer can no longer execute at the given time.
func (o *Offer) Expired(now int64) bool {
	return now >= o.Deadline
}

// Tombstone zeroes quantity, price and deadline together.
func (o *Offer) Tombstone() {
	o.Quantity = 0
	o.PayToken = ""
	o.PricePerItem = big.NewInt(0)
	o.Deadline = 0
}

// OfferKey is the composite identity of an offer.
type OfferKey struct {
	Contract string
	TokenID  uint64
	Offerer  string
}
