// Package app wires the trading engines, registries and infrastructure
// together from configuration.
package app

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/shopspring/decimal"

	"nftmarket_go/internal/asset"
	"nftmarket_go/internal/auction"
	"nftmarket_go/internal/event"
	"nftmarket_go/internal/factory"
	"nftmarket_go/internal/infra"
	"nftmarket_go/internal/market"
	"nftmarket_go/internal/pricefeed"
	"nftmarket_go/internal/registry"
	"nftmarket_go/internal/storage"
	"nftmarket_go/internal/token"
)

// Names under which the engines register themselves in the address
// registry. These are logical identities, not network addresses.
const (
	MarketplaceAddr   = "sys.marketplace"
	AuctionAddr       = "sys.auction"
	FactoryAddr       = "sys.factory"
	TokenRegistryAddr = "sys.token_registry"
	PriceFeedAddr     = "sys.price_feed"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config *infra.Config

	Bus    *event.Bus
	Ledger *token.Ledger

	Tokens    *registry.TokenRegistry
	Addresses *registry.AddressRegistry

	Factory     *factory.Factory
	Marketplace *market.Marketplace
	Auction     *auction.Engine
	PriceFeed   *pricefeed.Feed

	Store  *storage.Store
	Media  *infra.MediaCache
	Oracle *infra.PriceOracle

	recorder *storage.Recorder
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization: config, logger, ledger,
// registries, engines and storage.
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping NFT market...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Event bus
	b.Bus = event.NewBus()

	// 4. Payment ledger and token allow-list
	b.Ledger = token.NewLedger()
	b.Tokens = registry.NewTokenRegistry(cfg.Admin.Address)
	for _, t := range cfg.Tokens {
		if err := b.Ledger.Deploy(token.TokenInfo{
			Address:  t.Address,
			Name:     t.Name,
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
		}); err != nil {
			return err
		}
		if err := b.Tokens.Add(cfg.Admin.Address, t.Address); err != nil {
			return err
		}
	}
	slog.Info("✅ Payment ledger ready", slog.Int("tokens", len(cfg.Tokens)))

	// 5. Asset side: collection registry and factory
	assets := asset.NewRegistry()
	deployFee, err := infra.ParseAmount(cfg.Factory.DeployFee)
	if err != nil {
		return err
	}
	mintFee, err := infra.ParseAmount(cfg.Factory.MintFee)
	if err != nil {
		return err
	}
	b.Factory = factory.New(factory.Config{
		Admin:        cfg.Admin.Address,
		DeployFee:    deployFee,
		MintFee:      mintFee,
		FeeToken:     cfg.Factory.FeeToken,
		FeeRecipient: cfg.Admin.FeeRecipient,
		Operators:    []string{cfg.Market.EscrowAccount, cfg.Auction.EscrowAccount},
	}, b.Ledger, assets, b.Bus)

	// 6. Marketplace engine
	b.Marketplace = market.New(market.Config{
		Admin:          cfg.Admin.Address,
		EscrowAccount:  cfg.Market.EscrowAccount,
		PlatformFeeBps: cfg.Market.PlatformFeeBps,
		FeeRecipient:   cfg.Admin.FeeRecipient,
		MaxRoyaltyBps:  cfg.Market.MaxRoyaltyBps,
	}, market.Deps{
		Assets:  assets,
		Ledger:  b.Ledger,
		Tokens:  b.Tokens,
		Factory: b.Factory,
	}, b.Bus)

	// 7. Auction engine, sharing the marketplace's royalty records
	minIncrement, err := infra.ParseAmount(cfg.Auction.MinBidIncrement)
	if err != nil {
		return err
	}
	if minIncrement.Sign() == 0 {
		minIncrement = big.NewInt(1)
	}
	b.Auction = auction.New(auction.Config{
		Admin:           cfg.Admin.Address,
		EscrowAccount:   cfg.Auction.EscrowAccount,
		PlatformFeeBps:  cfg.Auction.PlatformFeeBps,
		FeeRecipient:    cfg.Admin.FeeRecipient,
		MinBidIncrement: minIncrement,
	}, auction.Deps{
		Assets:    assets,
		Ledger:    b.Ledger,
		Tokens:    b.Tokens,
		Royalties: b.Marketplace,
	}, b.Bus)

	// 8. Advisory price feed
	b.PriceFeed = pricefeed.New(cfg.Admin.Address, b.Tokens)

	// 9. Address registry records the live system components
	b.Addresses = registry.NewAddressRegistry(cfg.Admin.Address)
	admin := cfg.Admin.Address
	for _, bind := range []struct {
		update func(string, string) error
		addr   string
	}{
		{b.Addresses.UpdateMarketplace, MarketplaceAddr},
		{b.Addresses.UpdateAuction, AuctionAddr},
		{b.Addresses.UpdateFactory, FactoryAddr},
		{b.Addresses.UpdateTokenRegistry, TokenRegistryAddr},
		{b.Addresses.UpdatePriceFeed, PriceFeedAddr},
	} {
		if err := bind.update(admin, bind.addr); err != nil {
			return err
		}
	}

	// 10. History store
	store, err := storage.NewStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("✅ Database initialized")

	// 11. Collection media cache
	media, err := infra.NewMediaCache(cfg.Media.Dir)
	if err != nil {
		return err
	}
	b.Media = media

	return nil
}

// StartBackground launches the event recorder and the oracle poller.
func (b *Bootstrap) StartBackground(ctx context.Context) error {
	b.recorder = storage.NewRecorder(b.Store)
	b.recorder.Run(ctx, b.Bus.Subscribe(256))
	slog.Info("✅ Event recorder started")

	if b.Config.PriceFeed.URL != "" {
		admin := b.Config.Admin.Address
		b.Oracle = infra.NewPriceOracle(func(tok string, price decimal.Decimal) {
			if err := b.PriceFeed.UpdatePrice(admin, tok, price); err != nil {
				slog.Warn("Quote rejected", slog.String("token", tok), slog.Any("error", err))
			}
		}, b.Config.PriceFeed.URL, b.Config.PriceFeed.PollIntervalSec)
		if err := b.Oracle.Start(ctx); err != nil {
			return err
		}
		slog.Info("✅ Price oracle started", slog.String("url", b.Config.PriceFeed.URL))
	}

	return nil
}

// Shutdown stops background workers and closes the store.
func (b *Bootstrap) Shutdown() {
	if b.Oracle != nil {
		b.Oracle.Stop()
	}
	if b.Bus != nil {
		b.Bus.Close()
	}
	if b.recorder != nil {
		b.recorder.Wait()
	}
	if b.Store != nil {
		if err := b.Store.Close(); err != nil {
			slog.Warn("Failed to close store", slog.Any("error", err))
		}
	}
}
