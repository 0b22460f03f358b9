package domain

import "math/big"

// PayLedger is the fungible payment-token capability the engines consume.
// Transfer and TransferFrom either complete fully or fail without effect.
type PayLedger interface {
	BalanceOf(token, account string) *big.Int
	Allowance(token, owner, spender string) *big.Int
	Approve(token, owner, spender string, amount *big.Int) error
	Transfer(token, from, to string, amount *big.Int) error
	TransferFrom(token, spender, from, to string, amount *big.Int) error
}

// AssetContract is the ownership-transfer capability of an asset collection.
// The engines hold no asset-transfer logic of their own.
type AssetContract interface {
	Address() string
	OwnerOf(tokenID uint64) (string, error)
	IsApprovedOrOwner(operator string, tokenID uint64) (bool, error)
	TransferFrom(from, to string, tokenID uint64) error
}

// AssetResolver dereferences an asset-contract address to its live contract.
type AssetResolver interface {
	Resolve(contract string) (AssetContract, bool)
}

// TokenGate answers whether a payment token is allow-listed.
type TokenGate interface {
	Enabled(token string) bool
}

// CollectionGate answers whether an asset contract is recognized, which
// gates token-level royalty registration.
type CollectionGate interface {
	Exists(contract string) bool
}

// RoyaltySource resolves the royalty rate and recipient for a token:
// token-level registration wins over collection-level, else zero.
type RoyaltySource interface {
	RoyaltyInfo(contract string, tokenID uint64) (recipient string, royaltyBps uint64, ok bool)
}

// TimeSource supplies the current unix time. The engines only read the
// clock, never set it; tests substitute a fixed source.
type TimeSource func() int64
