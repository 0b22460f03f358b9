package factory

import (
	"errors"
	"math/big"
	"testing"

	"nftmarket_go/internal/asset"
	"nftmarket_go/internal/domain"
	"nftmarket_go/internal/token"
)

const weth = "0xweth"

func newTestFactory(t *testing.T) (*Factory, *asset.Registry, *token.Ledger) {
	t.Helper()

	ledger := token.NewLedger()
	if err := ledger.Deploy(token.TokenInfo{Address: weth, Symbol: "WETH", Decimals: 18}); err != nil {
		t.Fatalf("Deploy failed: %v", err)
	}
	ledger.Mint(weth, "creator", big.NewInt(1000))

	assets := asset.NewRegistry()
	f := New(Config{
		Admin:        "admin",
		DeployFee:    big.NewInt(100),
		MintFee:      big.NewInt(10),
		FeeToken:     weth,
		FeeRecipient: "treasury",
		Operators:    []string{"market-escrow", "auction-escrow"},
	}, ledger, assets, nil)

	return f, assets, ledger
}

func TestFactory_CreateCollection(t *testing.T) {
	f, assets, ledger := newTestFactory(t)

	addr, err := f.CreateCollection("creator", "Test Art", "TART")
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	if !f.Exists(addr) {
		t.Error("created collection must be recognized")
	}
	if got := ledger.BalanceOf(weth, "treasury"); got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("treasury = %v, want deploy fee 100", got)
	}

	col, ok := assets.Collection(addr)
	if !ok {
		t.Fatal("collection not registered in asset registry")
	}
	if col.Symbol() != "TART" {
		t.Errorf("symbol = %q, want TART", col.Symbol())
	}
	if col.MintFee().Cmp(big.NewInt(10)) != 0 {
		t.Errorf("mint fee = %v, want factory default 10", col.MintFee())
	}

	// Escrow operators are pre-approved on the provisioned collection.
	ledger.Mint(weth, "minter", big.NewInt(50))
	id, err := col.Mint("minter", "artist", "ipfs://x")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if ok, _ := col.IsApprovedOrOwner("market-escrow", id); !ok {
		t.Error("marketplace escrow must be a default operator")
	}
}

func TestFactory_CreateCollectionInsufficientFee(t *testing.T) {
	f, _, _ := newTestFactory(t)

	_, err := f.CreateCollection("pauper", "Broke", "BRK")
	if domain.ClassOf(err) != domain.ClassTransfer {
		t.Errorf("expected transfer failure, got %v", err)
	}
}

func TestFactory_RegisterAndDisable(t *testing.T) {
	f, assets, ledger := newTestFactory(t)

	external := asset.NewCollection(asset.CollectionConfig{
		Address: "0xexternal", Name: "External", Symbol: "EXT", Owner: "someone",
	}, ledger)
	if err := assets.Register(external); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := f.RegisterTokenContract("creator", "0xexternal"); !errors.Is(err, domain.ErrNotAdmin) {
		t.Errorf("expected ErrNotAdmin, got %v", err)
	}
	if err := f.RegisterTokenContract("admin", "0xmissing"); !errors.Is(err, domain.ErrContractNotFound) {
		t.Errorf("expected ErrContractNotFound, got %v", err)
	}

	if err := f.RegisterTokenContract("admin", "0xexternal"); err != nil {
		t.Fatalf("RegisterTokenContract failed: %v", err)
	}
	if !f.Exists("0xexternal") {
		t.Error("externally registered contract must be recognized")
	}
	if err := f.RegisterTokenContract("admin", "0xexternal"); !errors.Is(err, domain.ErrContractExists) {
		t.Errorf("expected ErrContractExists, got %v", err)
	}

	if err := f.DisableTokenContract("admin", "0xexternal"); err != nil {
		t.Fatalf("DisableTokenContract failed: %v", err)
	}
	if f.Exists("0xexternal") {
		t.Error("disabled contract must not be recognized")
	}
	if err := f.DisableTokenContract("admin", "0xexternal"); !errors.Is(err, domain.ErrContractNotFound) {
		t.Errorf("expected ErrContractNotFound, got %v", err)
	}
}

func TestFactory_TransferAdmin(t *testing.T) {
	f, assets, ledger := newTestFactory(t)

	external := asset.NewCollection(asset.CollectionConfig{Address: "0xext2", Owner: "x"}, ledger)
	assets.Register(external)

	if err := f.TransferAdmin("admin", "successor"); err != nil {
		t.Fatalf("TransferAdmin failed: %v", err)
	}
	if err := f.RegisterTokenContract("admin", "0xext2"); !errors.Is(err, domain.ErrNotAdmin) {
		t.Error("previous admin must lose authority")
	}
	if err := f.RegisterTokenContract("successor", "0xext2"); err != nil {
		t.Errorf("new admin rejected: %v", err)
	}
}

func TestFactory_ImplementsCollectionGate(t *testing.T) {
	var _ domain.CollectionGate = (*Factory)(nil)
}
