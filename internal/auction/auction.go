// Package auction implements the time-boxed bidding engine. Each auction
// instance walks Open -> Ended -> Settled; the asset sits in auction escrow
// from creation, and at most one bidder's funds are held at any time.
package auction

import (
	"log/slog"
	"math/big"
	"sync"
	"time"

	"nftmarket_go/internal/domain"
	"nftmarket_go/internal/event"
	"nftmarket_go/internal/infra"
	"nftmarket_go/pkg/bps"
)

// Deps are the collaborators the auction engine settles against.
type Deps struct {
	Assets    domain.AssetResolver
	Ledger    domain.PayLedger
	Tokens    domain.TokenGate
	Royalties domain.RoyaltySource // marketplace royalty records
}

// Config carries the auction engine's parameters.
type Config struct {
	Admin           string
	EscrowAccount   string   // holds both the asset and the highest bid's funds
	PlatformFeeBps  uint64
	FeeRecipient    string
	MinBidIncrement *big.Int // absolute step a new bid must clear over the highest
	TimeSource      domain.TimeSource
}

// Engine owns every auction instance and its highest bid.
type Engine struct {
	mu sync.RWMutex

	cfg  Config
	deps Deps
	bus  *event.Bus
	now  domain.TimeSource

	auctions map[domain.TokenKey]*domain.Auction
	bids     map[domain.TokenKey]*domain.Bid
}

// New creates an auction engine.
func New(cfg Config, deps Deps, bus *event.Bus) *Engine {
	if cfg.TimeSource == nil {
		cfg.TimeSource = func() int64 { return time.Now().Unix() }
	}
	if cfg.MinBidIncrement == nil {
		cfg.MinBidIncrement = big.NewInt(1)
	}
	return &Engine{
		cfg:      cfg,
		deps:     deps,
		bus:      bus,
		now:      cfg.TimeSource,
		auctions: make(map[domain.TokenKey]*domain.Auction),
		bids:     make(map[domain.TokenKey]*domain.Bid),
	}
}

// EscrowAccount returns the address auction assets and funds are held under.
func (e *Engine) EscrowAccount() string { return e.cfg.EscrowAccount }

// CreateAuction escrows the asset and opens a new auction instance. Only
// allowed when no live auction exists for the asset; a settled instance may
// be succeeded by a new one.
func (e *Engine) CreateAuction(caller, contract string, tokenID uint64, payToken string, reservePrice *big.Int, startTime, endTime int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := domain.TokenKey{Contract: contract, TokenID: tokenID}
	if existing, ok := e.auctions[key]; ok && !existing.Resulted {
		return domain.ErrAuctionExists
	}
	if endTime <= startTime || endTime <= e.now() {
		return domain.ErrInvalidDuration
	}
	if !e.deps.Tokens.Enabled(payToken) {
		return domain.ErrTokenNotEnabled
	}
	if reservePrice == nil {
		reservePrice = new(big.Int)
	}

	nft, ok := e.deps.Assets.Resolve(contract)
	if !ok {
		return domain.ErrContractNotFound
	}
	owner, err := nft.OwnerOf(tokenID)
	if err != nil {
		return domain.NewTransferError("resolve owner", err)
	}
	approved, err := nft.IsApprovedOrOwner(caller, tokenID)
	if err != nil {
		return domain.NewTransferError("check approval", err)
	}
	if owner != caller || !approved {
		return domain.ErrNotOwnerOrApproved
	}

	if err := nft.TransferFrom(caller, e.cfg.EscrowAccount, tokenID); err != nil {
		return domain.NewTransferError("escrow asset", err)
	}

	e.auctions[key] = &domain.Auction{
		Contract:     contract,
		TokenID:      tokenID,
		Seller:       caller,
		PayToken:     payToken,
		ReservePrice: new(big.Int).Set(reservePrice),
		StartTime:    startTime,
		EndTime:      endTime,
	}
	delete(e.bids, key)

	e.publish(&event.AuctionCreated{
		Contract:     contract,
		TokenID:      tokenID,
		Seller:       caller,
		PayToken:     payToken,
		ReservePrice: reservePrice.String(),
		StartTime:    startTime,
		EndTime:      endTime,
	})
	return nil
}

// PlaceBid escrows the caller's bid and refunds the displaced highest
// bidder. The new bid's funds are pulled before the previous bidder is
// refunded, so there is no window where either zero or two bids are held.
func (e *Engine) PlaceBid(caller, contract string, tokenID uint64, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := domain.TokenKey{Contract: contract, TokenID: tokenID}
	auc, ok := e.auctions[key]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if !auc.Open(e.now()) {
		return domain.ErrAuctionNotOpen
	}

	prev := e.bids[key]
	if prev == nil {
		if amount.Cmp(auc.ReservePrice) < 0 {
			return domain.ErrBidTooLow
		}
	} else {
		floor := new(big.Int).Add(prev.Amount, e.cfg.MinBidIncrement)
		if amount.Cmp(floor) < 0 {
			return domain.ErrBidTooLow
		}
	}

	err := e.deps.Ledger.TransferFrom(auc.PayToken, e.cfg.EscrowAccount, caller, e.cfg.EscrowAccount, amount)
	if err != nil {
		return domain.NewTransferError("escrow bid", err)
	}

	if prev != nil {
		if err := e.deps.Ledger.Transfer(auc.PayToken, e.cfg.EscrowAccount, prev.Bidder, prev.Amount); err != nil {
			// Give the new bidder their funds back; the previous bid stands.
			e.deps.Ledger.Transfer(auc.PayToken, e.cfg.EscrowAccount, caller, amount)
			return domain.NewTransferError("refund previous bidder", err)
		}
	}

	e.bids[key] = &domain.Bid{
		Bidder:  caller,
		Amount:  new(big.Int).Set(amount),
		BidTime: e.now(),
	}

	infra.GlobalMetrics.RecordBid()
	e.publish(&event.BidPlaced{
		Contract: contract,
		TokenID:  tokenID,
		Bidder:   caller,
		Amount:   amount.String(),
	})
	return nil
}

// CancelAuction withdraws a bid-less auction and returns the asset to the
// seller. Seller only.
func (e *Engine) CancelAuction(caller, contract string, tokenID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := domain.TokenKey{Contract: contract, TokenID: tokenID}
	auc, ok := e.auctions[key]
	if !ok || auc.Resulted {
		return domain.ErrAuctionNotFound
	}
	if auc.Seller != caller {
		return domain.ErrNotOwnerOrApproved
	}
	if e.bids[key] != nil {
		return domain.ErrBidsPlaced
	}

	nft, ok := e.deps.Assets.Resolve(contract)
	if !ok {
		return domain.ErrContractNotFound
	}
	if err := nft.TransferFrom(e.cfg.EscrowAccount, caller, tokenID); err != nil {
		return domain.NewTransferError("return asset", err)
	}
	delete(e.auctions, key)

	e.publish(&event.AuctionCancelled{Contract: contract, TokenID: tokenID, Seller: caller})
	return nil
}

// ResultAuction settles an ended auction exactly once: the highest bid is
// split with the same fee/royalty order as a marketplace sale and the asset
// goes to the winner. Without bids the asset simply returns to the seller.
// Callable by the seller or the winning bidder.
func (e *Engine) ResultAuction(caller, contract string, tokenID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := domain.TokenKey{Contract: contract, TokenID: tokenID}
	auc, ok := e.auctions[key]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if auc.Resulted {
		return domain.ErrAlreadyResulted
	}
	if e.now() < auc.EndTime {
		return domain.ErrAuctionNotEnded
	}

	bid := e.bids[key]
	if caller != auc.Seller && (bid == nil || caller != bid.Bidder) {
		return domain.ErrNotOwnerOrApproved
	}

	nft, ok := e.deps.Assets.Resolve(contract)
	if !ok {
		return domain.ErrContractNotFound
	}

	// Commit the terminal state before the external transfer calls.
	auc.Resulted = true

	if bid == nil {
		if err := nft.TransferFrom(e.cfg.EscrowAccount, auc.Seller, tokenID); err != nil {
			auc.Resulted = false
			return domain.NewTransferError("return asset", err)
		}
		e.publish(&event.AuctionResulted{
			Contract: contract,
			TokenID:  tokenID,
			Seller:   auc.Seller,
			PayToken: auc.PayToken,
			Amount:   "0",
			Fee:      "0",
			Royalty:  "0",
			Proceeds: "0",
		})
		infra.GlobalMetrics.RecordAuctionResulted()
		return nil
	}

	var recipient string
	var royaltyBps uint64
	if e.deps.Royalties != nil {
		recipient, royaltyBps, _ = e.deps.Royalties.RoyaltyInfo(contract, tokenID)
	}
	split := bps.Compute(bid.Amount, e.cfg.PlatformFeeBps, royaltyBps)

	if err := e.payout(auc.PayToken, split.Fee, e.cfg.FeeRecipient, split.Royalty, recipient, split.Proceeds, auc.Seller); err != nil {
		auc.Resulted = false
		infra.GlobalMetrics.RecordTransferFailure()
		return err
	}

	if err := nft.TransferFrom(e.cfg.EscrowAccount, bid.Bidder, tokenID); err != nil {
		// Pull the funds back into escrow and reopen the instance.
		e.deps.Ledger.Transfer(auc.PayToken, e.cfg.FeeRecipient, e.cfg.EscrowAccount, split.Fee)
		if recipient != "" && split.Royalty.Sign() > 0 {
			e.deps.Ledger.Transfer(auc.PayToken, recipient, e.cfg.EscrowAccount, split.Royalty)
		}
		e.deps.Ledger.Transfer(auc.PayToken, auc.Seller, e.cfg.EscrowAccount, split.Proceeds)
		auc.Resulted = false
		infra.GlobalMetrics.RecordTransferFailure()
		return domain.NewTransferError("deliver asset", err)
	}

	winner := bid.Bidder
	amount := bid.Amount.String()
	delete(e.bids, key)

	infra.GlobalMetrics.RecordAuctionResulted()
	slog.Info("auction resulted",
		slog.String("contract", contract),
		slog.Uint64("token_id", tokenID),
		slog.String("winner", winner),
		slog.String("amount", amount))

	e.publish(&event.AuctionResulted{
		Contract: contract,
		TokenID:  tokenID,
		Seller:   auc.Seller,
		Winner:   winner,
		PayToken: auc.PayToken,
		Amount:   amount,
		Fee:      split.Fee.String(),
		Royalty:  split.Royalty.String(),
		Proceeds: split.Proceeds.String(),
	})
	return nil
}

// payout distributes the escrowed winning bid. Legs already paid are pulled
// back if a later leg fails.
func (e *Engine) payout(payToken string, fee *big.Int, feeTo string, royalty *big.Int, royaltyTo string, proceeds *big.Int, seller string) error {
	type leg struct {
		to     string
		amount *big.Int
		op     string
	}
	legs := []leg{
		{feeTo, fee, "pay platform fee"},
		{royaltyTo, royalty, "pay royalty"},
		{seller, proceeds, "pay seller"},
	}
	for i, l := range legs {
		if l.amount.Sign() == 0 || l.to == "" {
			continue
		}
		if err := e.deps.Ledger.Transfer(payToken, e.cfg.EscrowAccount, l.to, l.amount); err != nil {
			for j := 0; j < i; j++ {
				if legs[j].amount.Sign() == 0 || legs[j].to == "" {
					continue
				}
				e.deps.Ledger.Transfer(payToken, legs[j].to, e.cfg.EscrowAccount, legs[j].amount)
			}
			return domain.NewTransferError(l.op, err)
		}
	}
	return nil
}

// UpdateMinBidIncrement changes the absolute step new bids must clear.
// Administrator only.
func (e *Engine) UpdateMinBidIncrement(caller string, increment *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.cfg.Admin {
		return domain.ErrNotAdmin
	}
	if increment == nil || increment.Sign() < 0 {
		return domain.ErrInvalidPrice
	}
	e.cfg.MinBidIncrement = new(big.Int).Set(increment)
	return nil
}

// Rebind replaces the engine's collaborators as a unit. Administrator only.
func (e *Engine) Rebind(caller string, deps Deps) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.cfg.Admin {
		return domain.ErrNotAdmin
	}
	e.deps = deps
	return nil
}

// TransferAdmin hands the engine to a new administrator.
func (e *Engine) TransferAdmin(caller, newAdmin string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.cfg.Admin {
		return domain.ErrNotAdmin
	}
	if newAdmin == "" {
		return domain.ErrInvalidAddress
	}
	e.cfg.Admin = newAdmin
	return nil
}

// Auction returns a copy of the auction instance for an asset.
func (e *Engine) Auction(contract string, tokenID uint64) (domain.Auction, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, ok := e.auctions[domain.TokenKey{Contract: contract, TokenID: tokenID}]
	if !ok {
		return domain.Auction{}, false
	}
	return *a, true
}

// HighestBid returns a copy of the standing highest bid for an asset.
func (e *Engine) HighestBid(contract string, tokenID uint64) (domain.Bid, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	b, ok := e.bids[domain.TokenKey{Contract: contract, TokenID: tokenID}]
	if !ok {
		return domain.Bid{}, false
	}
	return domain.Bid{Bidder: b.Bidder, Amount: new(big.Int).Set(b.Amount), BidTime: b.BidTime}, true
}

func (e *Engine) publish(ev event.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
