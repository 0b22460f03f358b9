// Package asset implements the tradable collection contract: minting with a
// mint fee, burning, approvals and on-behalf transfers. The marketplace and
// auction escrow accounts are pre-approved operators on factory-provisioned
// collections so listing and auctioning need no extra approval step.
package asset

import (
	"math/big"
	"sync"

	"nftmarket_go/internal/domain"
)

// CollectionConfig carries the deployment-time parameters of a collection.
type CollectionConfig struct {
	Address      string
	Name         string
	Symbol       string
	Owner        string   // collection owner, may update the mint fee
	MintFee      *big.Int // charged per mint, paid in FeeToken
	FeeToken     string   // payment token the mint fee is charged in
	FeeRecipient string
	Operators    []string // pre-approved operators (marketplace/auction escrow)
}

// Collection is a single non-fungible asset contract.
type Collection struct {
	mu sync.RWMutex

	cfg    CollectionConfig
	ledger domain.PayLedger

	nextID    uint64
	owners    map[uint64]string
	minters   map[uint64]string
	tokenURIs map[uint64]string
	approved  map[uint64]string          // per-token operator, cleared on transfer
	operators map[string]map[string]bool // owner -> operator -> approved for all
}

// NewCollection deploys a collection. The ledger is consulted only to charge
// the mint fee; a nil MintFee means minting is free.
func NewCollection(cfg CollectionConfig, ledger domain.PayLedger) *Collection {
	if cfg.MintFee == nil {
		cfg.MintFee = new(big.Int)
	}
	return &Collection{
		cfg:       cfg,
		ledger:    ledger,
		nextID:    1,
		owners:    make(map[uint64]string),
		minters:   make(map[uint64]string),
		tokenURIs: make(map[uint64]string),
		approved:  make(map[uint64]string),
		operators: make(map[string]map[string]bool),
	}
}

// Address returns the contract address.
func (c *Collection) Address() string { return c.cfg.Address }

// Name returns the collection name.
func (c *Collection) Name() string { return c.cfg.Name }

// Symbol returns the collection symbol.
func (c *Collection) Symbol() string { return c.cfg.Symbol }

// MintFee returns a copy of the current mint fee.
func (c *Collection) MintFee() *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return new(big.Int).Set(c.cfg.MintFee)
}

// UpdateMintFee changes the per-mint fee. Collection owner only.
func (c *Collection) UpdateMintFee(caller string, fee *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.cfg.Owner {
		return domain.ErrNotAdmin
	}
	if fee.Sign() < 0 {
		return domain.ErrInvalidPrice
	}
	c.cfg.MintFee = new(big.Int).Set(fee)
	return nil
}

// Mint issues a new token to `to`, charging the mint fee from the caller to
// the collection fee recipient. The caller is recorded as the token's minter.
func (c *Collection) Mint(caller, to, tokenURI string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if to == "" {
		return 0, domain.ErrInvalidAddress
	}

	if c.cfg.MintFee.Sign() > 0 && c.ledger != nil {
		err := c.ledger.Transfer(c.cfg.FeeToken, caller, c.cfg.FeeRecipient, c.cfg.MintFee)
		if err != nil {
			return 0, domain.NewTransferError("pay mint fee", err)
		}
	}

	id := c.nextID
	c.nextID++
	c.owners[id] = to
	c.minters[id] = caller
	c.tokenURIs[id] = tokenURI
	return id, nil
}

// Burn destroys a token. Owner or approved only.
func (c *Collection) Burn(caller string, tokenID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, ok := c.owners[tokenID]
	if !ok {
		return domain.ErrUnknownTokenID
	}
	if !c.isApprovedOrOwner(caller, owner, tokenID) {
		return domain.ErrNotOwnerOrApproved
	}
	delete(c.owners, tokenID)
	delete(c.tokenURIs, tokenID)
	delete(c.approved, tokenID)
	return nil
}

// OwnerOf returns the current owner of a token.
func (c *Collection) OwnerOf(tokenID uint64) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	owner, ok := c.owners[tokenID]
	if !ok {
		return "", domain.ErrUnknownTokenID
	}
	return owner, nil
}

// MinterOf returns who minted a token.
func (c *Collection) MinterOf(tokenID uint64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.minters[tokenID]
	return m, ok
}

// TokenURI returns the metadata URI of a token.
func (c *Collection) TokenURI(tokenID uint64) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	uri, ok := c.tokenURIs[tokenID]
	if !ok {
		return "", domain.ErrUnknownTokenID
	}
	return uri, nil
}

// Approve grants operator transfer rights over a single token.
func (c *Collection) Approve(caller, operator string, tokenID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, ok := c.owners[tokenID]
	if !ok {
		return domain.ErrUnknownTokenID
	}
	if caller != owner && !c.operators[owner][caller] {
		return domain.ErrNotOwnerOrApproved
	}
	c.approved[tokenID] = operator
	return nil
}

// SetApprovalForAll grants or revokes operator rights over every token the
// caller owns now or later.
func (c *Collection) SetApprovalForAll(caller, operator string, approved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ops, ok := c.operators[caller]
	if !ok {
		ops = make(map[string]bool)
		c.operators[caller] = ops
	}
	ops[operator] = approved
}

// IsApprovedOrOwner reports whether operator may move the token.
func (c *Collection) IsApprovedOrOwner(operator string, tokenID uint64) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	owner, ok := c.owners[tokenID]
	if !ok {
		return false, domain.ErrUnknownTokenID
	}
	return c.isApprovedOrOwner(operator, owner, tokenID), nil
}

// TransferFrom moves a token between accounts. The caller semantics of the
// on-chain original collapse here: `from` must own the token, and the move
// is legal because the engines only call this after their own approval
// checks. Per-token approval is cleared on transfer.
func (c *Collection) TransferFrom(from, to string, tokenID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, ok := c.owners[tokenID]
	if !ok {
		return domain.ErrUnknownTokenID
	}
	if owner != from {
		return domain.ErrNotTokenOwner
	}
	if to == "" {
		return domain.ErrInvalidAddress
	}
	c.owners[tokenID] = to
	delete(c.approved, tokenID)
	return nil
}

// isApprovedOrOwner must be called with the lock held.
func (c *Collection) isApprovedOrOwner(operator, owner string, tokenID uint64) bool {
	if operator == owner {
		return true
	}
	if c.approved[tokenID] == operator {
		return true
	}
	if c.operators[owner][operator] {
		return true
	}
	for _, op := range c.cfg.Operators {
		if op == operator {
			return true
		}
	}
	return false
}
