// Package market implements the marketplace engine: listing and offer
// lifecycles, asset escrow, and sale settlement with platform-fee and
// creator-royalty distribution.
//
// Every mutating operation runs as one indivisible transition behind the
// engine mutex: it either completes fully or leaves state exactly as it
// was. Entity state is committed before external ledger/asset calls, and a
// failed leg triggers a compensating unwind.
package market

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

// Deps are the collaborators the marketplace settles against. Rebind
// replaces them as a unit.
type Deps struct {
	Assets  domain.AssetResolver
	Ledger  domain.PayLedger
	Tokens  domain.TokenGate
	Factory domain.CollectionGate
}

// Config carries the marketplace's economic parameters.
type Config struct {
	Admin          string
	EscrowAccount  string // address listings are escrowed under; also the ledger spender
	PlatformFeeBps uint64
	FeeRecipient   string
	MaxRoyaltyBps  uint64            // policy cap on registered royalty rates
	TimeSource     domain.TimeSource // nil means wall clock
}

// Marketplace owns listings, offers and royalty records.
type Marketplace struct {
	mu sync.RWMutex

	cfg  Config
	deps Deps
	bus  *event.Bus
	now  domain.TimeSource

	listings map[domain.ListingKey]*domain.Listing
	offers   map[domain.OfferKey]*domain.Offer

	collectionRoyalties map[string]*domain.CollectionRoyalty
	royalties           map[domain.TokenKey]uint64
	minters             map[domain.TokenKey]string
}

// New creates a marketplace engine.
func New(cfg Config, deps Deps, bus *event.Bus) *Marketplace {
	if cfg.TimeSource == nil {
		cfg.TimeSource = func() int64 { return time.Now().Unix() }
	}
	if cfg.MaxRoyaltyBps == 0 {
		cfg.MaxRoyaltyBps = bps.MaxBps
	}
	return &Marketplace{
		cfg:                 cfg,
		deps:                deps,
		bus:                 bus,
		now:                 cfg.TimeSource,
		listings:            make(map[domain.ListingKey]*domain.Listing),
		offers:              make(map[domain.OfferKey]*domain.Offer),
		collectionRoyalties: make(map[string]*domain.CollectionRoyalty),
		royalties:           make(map[domain.TokenKey]uint64),
		minters:             make(map[domain.TokenKey]string),
	}
}

// EscrowAccount returns the address the marketplace escrows assets under.
func (m *Marketplace) EscrowAccount() string { return m.cfg.EscrowAccount }

// ListItem moves the asset into escrow and records a listing for
// (contract, tokenID, caller). Listing again overwrites the previous record.
func (m *Marketplace) ListItem(caller, contract string, tokenID uint64, quantity uint64, payToken string, pricePerItem *big.Int, startingTime int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	if pricePerItem == nil || pricePerItem.Sign() <= 0 {
		return domain.ErrInvalidPrice
	}
	if !m.deps.Tokens.Enabled(payToken) {
		return domain.ErrTokenNotEnabled
	}

	nft, ok := m.deps.Assets.Resolve(contract)
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

	if err := nft.TransferFrom(caller, m.cfg.EscrowAccount, tokenID); err != nil {
		return domain.NewTransferError("escrow asset", err)
	}

	key := domain.ListingKey{Contract: contract, TokenID: tokenID, Seller: caller}
	m.listings[key] = &domain.Listing{
		Contract:     contract,
		TokenID:      tokenID,
		Seller:       caller,
		Quantity:     quantity,
		PayToken:     payToken,
		PricePerItem: new(big.Int).Set(pricePerItem),
		StartingTime: startingTime,
	}

	infra.GlobalMetrics.RecordListing()
	m.publish(&event.ItemListed{
		Contract:     contract,
		TokenID:      tokenID,
		Seller:       caller,
		Quantity:     quantity,
		PayToken:     payToken,
		PricePerItem: pricePerItem.String(),
		StartingTime: startingTime,
	})
	return nil
}

// CancelListing returns the asset from escrow to the seller and tombstones
// the listing.
func (m *Marketplace) CancelListing(caller, contract string, tokenID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := domain.ListingKey{Contract: contract, TokenID: tokenID, Seller: caller}
	listing := m.listings[key]
	if !listing.Active() {
		return domain.ErrListingNotFound
	}

	nft, ok := m.deps.Assets.Resolve(contract)
	if !ok {
		return domain.ErrContractNotFound
	}

	snapshot := *listing
	listing.Tombstone()

	if err := nft.TransferFrom(m.cfg.EscrowAccount, caller, tokenID); err != nil {
		*listing = snapshot
		return domain.NewTransferError("return asset", err)
	}

	m.publish(&event.ItemCanceled{Contract: contract, TokenID: tokenID, Seller: caller})
	return nil
}

// UpdateListing mutates the pay token and price of an active listing in
// place. Escrow and starting time are untouched.
func (m *Marketplace) UpdateListing(caller, contract string, tokenID uint64, newPayToken string, newPrice *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := domain.ListingKey{Contract: contract, TokenID: tokenID, Seller: caller}
	listing := m.listings[key]
	if !listing.Active() {
		return domain.ErrListingNotFound
	}
	if newPrice == nil || newPrice.Sign() <= 0 {
		return domain.ErrInvalidPrice
	}
	if !m.deps.Tokens.Enabled(newPayToken) {
		return domain.ErrTokenNotEnabled
	}

	listing.PayToken = newPayToken
	listing.PricePerItem = new(big.Int).Set(newPrice)

	m.publish(&event.ItemUpdated{
		Contract:     contract,
		TokenID:      tokenID,
		Seller:       caller,
		PayToken:     newPayToken,
		PricePerItem: newPrice.String(),
	})
	return nil
}

// BuyItem settles an active listing: pulls payment from the buyer, pays the
// platform fee, creator royalty and seller proceeds, and hands the escrowed
// asset to the buyer. The whole sequence is all-or-nothing.
func (m *Marketplace) BuyItem(caller, contract string, tokenID uint64, payToken, seller string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := domain.ListingKey{Contract: contract, TokenID: tokenID, Seller: seller}
	listing := m.listings[key]
	if !listing.Active() {
		return domain.ErrListingNotFound
	}
	if listing.PayToken != payToken {
		return domain.ErrInvalidPayToken
	}
	if m.now() < listing.StartingTime {
		return domain.ErrItemNotBuyable
	}

	nft, ok := m.deps.Assets.Resolve(contract)
	if !ok {
		return domain.ErrContractNotFound
	}

	gross := bps.Gross(listing.PricePerItem, listing.Quantity)
	recipient, royaltyBps, _ := m.royaltyInfo(contract, tokenID)
	split := bps.Compute(gross, m.cfg.PlatformFeeBps, royaltyBps)

	snapshot := *listing
	quantity := listing.Quantity
	price := new(big.Int).Set(listing.PricePerItem)
	listing.Tombstone()

	err := m.settle(payToken, caller, []paymentLeg{
		{to: m.cfg.FeeRecipient, amount: split.Fee, op: "pay platform fee"},
		{to: recipient, amount: split.Royalty, op: "pay royalty"},
		{to: seller, amount: split.Proceeds, op: "pay seller"},
	})
	if err != nil {
		*listing = snapshot
		infra.GlobalMetrics.RecordTransferFailure()
		return err
	}

	if err := nft.TransferFrom(m.cfg.EscrowAccount, caller, tokenID); err != nil {
		m.unwind(payToken, caller, []paymentLeg{
			{to: m.cfg.FeeRecipient, amount: split.Fee},
			{to: recipient, amount: split.Royalty},
			{to: seller, amount: split.Proceeds},
		})
		*listing = snapshot
		infra.GlobalMetrics.RecordTransferFailure()
		return domain.NewTransferError("deliver asset", err)
	}

	infra.GlobalMetrics.RecordSale()
	slog.Info("item sold",
		slog.String("contract", contract),
		slog.Uint64("token_id", tokenID),
		slog.String("seller", seller),
		slog.String("buyer", caller),
		slog.String("gross", gross.String()))

	m.publish(&event.ItemSold{
		Contract:     contract,
		TokenID:      tokenID,
		Seller:       seller,
		Buyer:        caller,
		Quantity:     quantity,
		PayToken:     payToken,
		PricePerItem: price.String(),
		Gross:        gross.String(),
		Fee:          split.Fee.String(),
		Royalty:      split.Royalty.String(),
		Proceeds:     split.Proceeds.String(),
	})
	return nil
}

// CreateOffer records a standing offer for (contract, tokenID, caller).
// No funds move; balance and allowance are checked at acceptance time.
func (m *Marketplace) CreateOffer(caller, contract string, tokenID uint64, payToken string, quantity uint64, pricePerItem *big.Int, deadline int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	if pricePerItem == nil || pricePerItem.Sign() <= 0 {
		return domain.ErrInvalidPrice
	}
	if !m.deps.Tokens.Enabled(payToken) {
		return domain.ErrTokenNotEnabled
	}
	if deadline <= m.now() {
		return domain.ErrInvalidDeadline
	}
	if _, ok := m.deps.Assets.Resolve(contract); !ok {
		return domain.ErrContractNotFound
	}

	key := domain.OfferKey{Contract: contract, TokenID: tokenID, Offerer: caller}
	m.offers[key] = &domain.Offer{
		Contract:     contract,
		TokenID:      tokenID,
		Offerer:      caller,
		PayToken:     payToken,
		Quantity:     quantity,
		PricePerItem: new(big.Int).Set(pricePerItem),
		Deadline:     deadline,
	}

	m.publish(&event.OfferCreated{
		Contract:     contract,
		TokenID:      tokenID,
		Offerer:      caller,
		PayToken:     payToken,
		Quantity:     quantity,
		PricePerItem: pricePerItem.String(),
		Deadline:     deadline,
	})
	return nil
}

// CancelOffer tombstones the caller's offer.
func (m *Marketplace) CancelOffer(caller, contract string, tokenID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := domain.OfferKey{Contract: contract, TokenID: tokenID, Offerer: caller}
	offer := m.offers[key]
	if !offer.Active() {
		return domain.ErrOfferNotFound
	}
	offer.Tombstone()

	m.publish(&event.OfferCanceled{Contract: contract, TokenID: tokenID, Offerer: caller})
	return nil
}

// AcceptOffer settles a standing offer: the caller must currently control
// the asset, directly or through an active listing in escrow. Payment is
// pulled from the offerer, the same fee/royalty split as BuyItem applies,
// and any active listing by the caller for this asset is closed with the
// sale.
func (m *Marketplace) AcceptOffer(caller, contract string, tokenID uint64, offerer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	offerKey := domain.OfferKey{Contract: contract, TokenID: tokenID, Offerer: offerer}
	offer := m.offers[offerKey]
	if !offer.Active() {
		return domain.ErrOfferNotFound
	}
	if offer.Expired(m.now()) {
		return domain.ErrOfferExpired
	}

	nft, ok := m.deps.Assets.Resolve(contract)
	if !ok {
		return domain.ErrContractNotFound
	}

	// The asset is either held by the caller or escrowed here under an
	// active listing of theirs.
	listingKey := domain.ListingKey{Contract: contract, TokenID: tokenID, Seller: caller}
	listing := m.listings[listingKey]

	owner, err := nft.OwnerOf(tokenID)
	if err != nil {
		return domain.NewTransferError("resolve owner", err)
	}
	holder := ""
	switch {
	case owner == caller:
		holder = caller
	case owner == m.cfg.EscrowAccount && listing.Active():
		holder = m.cfg.EscrowAccount
	default:
		return domain.ErrNotOwnerOrApproved
	}

	gross := bps.Gross(offer.PricePerItem, offer.Quantity)
	recipient, royaltyBps, _ := m.royaltyInfo(contract, tokenID)
	split := bps.Compute(gross, m.cfg.PlatformFeeBps, royaltyBps)

	offerSnapshot := *offer
	offer.Tombstone()

	var listingSnapshot domain.Listing
	hadListing := listing.Active()
	if hadListing {
		listingSnapshot = *listing
		listing.Tombstone()
	}

	restore := func() {
		*offer = offerSnapshot
		if hadListing {
			*listing = listingSnapshot
		}
	}

	err = m.settle(offerSnapshot.PayToken, offerer, []paymentLeg{
		{to: m.cfg.FeeRecipient, amount: split.Fee, op: "pay platform fee"},
		{to: recipient, amount: split.Royalty, op: "pay royalty"},
		{to: caller, amount: split.Proceeds, op: "pay seller"},
	})
	if err != nil {
		restore()
		infra.GlobalMetrics.RecordTransferFailure()
		return err
	}

	if err := nft.TransferFrom(holder, offerer, tokenID); err != nil {
		m.unwind(offerSnapshot.PayToken, offerer, []paymentLeg{
			{to: m.cfg.FeeRecipient, amount: split.Fee},
			{to: recipient, amount: split.Royalty},
			{to: caller, amount: split.Proceeds},
		})
		restore()
		infra.GlobalMetrics.RecordTransferFailure()
		return domain.NewTransferError("deliver asset", err)
	}

	infra.GlobalMetrics.RecordSale()
	m.publish(&event.ItemSold{
		Contract:     contract,
		TokenID:      tokenID,
		Seller:       caller,
		Buyer:        offerer,
		Quantity:     offerSnapshot.Quantity,
		PayToken:     offerSnapshot.PayToken,
		PricePerItem: offerSnapshot.PricePerItem.String(),
		Gross:        gross.String(),
		Fee:          split.Fee.String(),
		Royalty:      split.Royalty.String(),
		Proceeds:     split.Proceeds.String(),
	})
	return nil
}

func (m *Marketplace) publish(ev event.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}
