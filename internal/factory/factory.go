// Package factory provisions asset collections with their deployment-time
// economic parameters and tracks which collection addresses are recognized.
// Recognition gates token-level royalty registration on the marketplace;
// trading itself works against any resolvable asset contract.
package factory

import (
	"encoding/hex"
	"log/slog"
	"math/big"
	"sync"

	"github.com/google/uuid"

	"nftmarket_go/internal/asset"
	"nftmarket_go/internal/domain"
	"nftmarket_go/internal/event"
)

// Config carries the factory's own economic parameters.
type Config struct {
	Admin        string
	DeployFee    *big.Int // charged per CreateCollection
	MintFee      *big.Int // embedded into every provisioned collection
	FeeToken     string   // payment token fees are charged in
	FeeRecipient string
	Operators    []string // escrow accounts pre-approved on new collections
}

// Factory provisions and recognizes asset collections.
type Factory struct {
	mu sync.Mutex

	cfg    Config
	ledger domain.PayLedger
	assets *asset.Registry
	bus    *event.Bus

	recognized map[string]bool
}

// New creates a factory over the given ledger and asset registry.
func New(cfg Config, ledger domain.PayLedger, assets *asset.Registry, bus *event.Bus) *Factory {
	if cfg.DeployFee == nil {
		cfg.DeployFee = new(big.Int)
	}
	if cfg.MintFee == nil {
		cfg.MintFee = new(big.Int)
	}
	return &Factory{
		cfg:        cfg,
		ledger:     ledger,
		assets:     assets,
		bus:        bus,
		recognized: make(map[string]bool),
	}
}

// CreateCollection deploys a new collection owned by the caller, charges the
// deploy fee, registers the contract and marks it recognized. Anyone may
// deploy; only the fee gates it.
func (f *Factory) CreateCollection(caller, name, symbol string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller == "" {
		return "", domain.ErrInvalidAddress
	}

	if f.cfg.DeployFee.Sign() > 0 {
		err := f.ledger.Transfer(f.cfg.FeeToken, caller, f.cfg.FeeRecipient, f.cfg.DeployFee)
		if err != nil {
			return "", domain.NewTransferError("pay deploy fee", err)
		}
	}

	addr := newContractAddress()
	col := asset.NewCollection(asset.CollectionConfig{
		Address:      addr,
		Name:         name,
		Symbol:       symbol,
		Owner:        caller,
		MintFee:      new(big.Int).Set(f.cfg.MintFee),
		FeeToken:     f.cfg.FeeToken,
		FeeRecipient: f.cfg.FeeRecipient,
		Operators:    f.cfg.Operators,
	}, f.ledger)

	if err := f.assets.Register(col); err != nil {
		// Address collision is practically impossible; refund and surface.
		if f.cfg.DeployFee.Sign() > 0 {
			f.ledger.Transfer(f.cfg.FeeToken, f.cfg.FeeRecipient, caller, f.cfg.DeployFee)
		}
		return "", err
	}
	f.recognized[addr] = true

	slog.Info("collection created",
		slog.String("contract", addr),
		slog.String("creator", caller),
		slog.String("symbol", symbol))

	f.publish(&event.ContractCreated{
		Creator:  caller,
		Contract: addr,
		Name:     name,
		Symbol:   symbol,
		MintFee:  f.cfg.MintFee.String(),
	})
	return addr, nil
}

// RegisterTokenContract recognizes an externally deployed collection.
// Administrator only; the contract must be resolvable.
func (f *Factory) RegisterTokenContract(caller, contract string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller != f.cfg.Admin {
		return domain.ErrNotAdmin
	}
	col, ok := f.assets.Collection(contract)
	if !ok {
		return domain.ErrContractNotFound
	}
	if f.recognized[contract] {
		return domain.ErrContractExists
	}
	f.recognized[contract] = true

	f.publish(&event.ContractCreated{
		Creator:  caller,
		Contract: contract,
		Name:     col.Name(),
		Symbol:   col.Symbol(),
		MintFee:  col.MintFee().String(),
	})
	return nil
}

// DisableTokenContract derecognizes a collection. Administrator only.
func (f *Factory) DisableTokenContract(caller, contract string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller != f.cfg.Admin {
		return domain.ErrNotAdmin
	}
	if !f.recognized[contract] {
		return domain.ErrContractNotFound
	}
	delete(f.recognized, contract)

	f.publish(&event.ContractDisabled{Caller: caller, Contract: contract})
	return nil
}

// Exists reports whether a contract address is currently recognized.
func (f *Factory) Exists(contract string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recognized[contract]
}

// TransferAdmin hands the factory to a new administrator.
func (f *Factory) TransferAdmin(caller, newAdmin string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller != f.cfg.Admin {
		return domain.ErrNotAdmin
	}
	if newAdmin == "" {
		return domain.ErrInvalidAddress
	}
	f.cfg.Admin = newAdmin
	return nil
}

func (f *Factory) publish(ev event.Event) {
	if f.bus != nil {
		f.bus.Publish(ev)
	}
}

// newContractAddress mints a fresh opaque contract address.
func newContractAddress() string {
	id := uuid.New()
	return "0x" + hex.EncodeToString(id[:])
}
