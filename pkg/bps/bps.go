// Package bps implements basis-point settlement arithmetic over big integers.
// All monetary values are token base units (*big.Int); divisions floor.
package bps

import "math/big"

// Denominator is the basis-point scale: 10000 bps == 100%.
const Denominator = 10000

// MaxBps is the largest rate accepted anywhere in the system.
const MaxBps = Denominator

var denom = big.NewInt(Denominator)

// Split is the three-way division of a gross sale amount.
// Fee + Royalty + Proceeds always reconstructs the gross exactly.
type Split struct {
	Fee      *big.Int // platform fee, taken from the gross
	Royalty  *big.Int // creator royalty, taken from the post-fee remainder
	Proceeds *big.Int // what the seller receives
}

// Compute splits gross according to the settlement order:
//
//	fee      = gross * feeBps / 10000
//	royalty  = (gross - fee) * royaltyBps / 10000
//	proceeds = gross - fee - royalty
//
// Both divisions floor, so any truncation remainder accrues to proceeds.
func Compute(gross *big.Int, feeBps, royaltyBps uint64) Split {
	fee := new(big.Int).Mul(gross, new(big.Int).SetUint64(feeBps))
	fee.Quo(fee, denom)

	after := new(big.Int).Sub(gross, fee)

	royalty := new(big.Int).Mul(after, new(big.Int).SetUint64(royaltyBps))
	royalty.Quo(royalty, denom)

	proceeds := new(big.Int).Sub(after, royalty)

	return Split{Fee: fee, Royalty: royalty, Proceeds: proceeds}
}

// Gross multiplies a per-item price by a quantity.
func Gross(pricePerItem *big.Int, quantity uint64) *big.Int {
	return new(big.Int).Mul(pricePerItem, new(big.Int).SetUint64(quantity))
}

// Valid reports whether a rate is within the accepted bound.
func Valid(rate uint64) bool {
	return rate <= MaxBps
}
