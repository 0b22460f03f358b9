package token

import (
	"errors"
	"math/big"
	"testing"

	"nftmarket_go/internal/domain"
)

const dai = "0xdai"

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger()
	if err := l.Deploy(TokenInfo{Address: dai, Name: "Testing DAI", Symbol: "DAI", Decimals: 18}); err != nil {
		t.Fatalf("Deploy failed: %v", err)
	}
	return l
}

func TestLedger_MintAndBalance(t *testing.T) {
	l := newTestLedger(t)

	if err := l.Mint(dai, "alice", big.NewInt(1000)); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	if got := l.BalanceOf(dai, "alice"); got.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("balance = %v, want 1000", got)
	}

	// Unknown account and unknown token read as zero.
	if got := l.BalanceOf(dai, "nobody"); got.Sign() != 0 {
		t.Errorf("unknown account balance = %v, want 0", got)
	}
	if got := l.BalanceOf("0xmissing", "alice"); got.Sign() != 0 {
		t.Errorf("unknown token balance = %v, want 0", got)
	}
}

func TestLedger_DeployDuplicate(t *testing.T) {
	l := newTestLedger(t)

	err := l.Deploy(TokenInfo{Address: dai, Symbol: "DAI"})
	if !errors.Is(err, domain.ErrTokenAlreadyAdded) {
		t.Errorf("expected ErrTokenAlreadyAdded, got %v", err)
	}
}

func TestLedger_Transfer(t *testing.T) {
	l := newTestLedger(t)
	l.Mint(dai, "alice", big.NewInt(500))

	if err := l.Transfer(dai, "alice", "bob", big.NewInt(200)); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if got := l.BalanceOf(dai, "alice"); got.Cmp(big.NewInt(300)) != 0 {
		t.Errorf("alice balance = %v, want 300", got)
	}
	if got := l.BalanceOf(dai, "bob"); got.Cmp(big.NewInt(200)) != 0 {
		t.Errorf("bob balance = %v, want 200", got)
	}

	err := l.Transfer(dai, "alice", "bob", big.NewInt(1000))
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	// Failed transfer must not move anything.
	if got := l.BalanceOf(dai, "alice"); got.Cmp(big.NewInt(300)) != 0 {
		t.Errorf("alice balance after failed transfer = %v, want 300", got)
	}
}

func TestLedger_TransferFrom(t *testing.T) {
	l := newTestLedger(t)
	l.Mint(dai, "alice", big.NewInt(500))

	// Without allowance the spender is rejected.
	err := l.TransferFrom(dai, "market", "alice", "bob", big.NewInt(100))
	if !errors.Is(err, domain.ErrInsufficientAllowance) {
		t.Errorf("expected ErrInsufficientAllowance, got %v", err)
	}

	if err := l.Approve(dai, "alice", "market", big.NewInt(150)); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if err := l.TransferFrom(dai, "market", "alice", "bob", big.NewInt(100)); err != nil {
		t.Fatalf("TransferFrom failed: %v", err)
	}

	if got := l.Allowance(dai, "alice", "market"); got.Cmp(big.NewInt(50)) != 0 {
		t.Errorf("allowance = %v, want 50", got)
	}
	if got := l.BalanceOf(dai, "bob"); got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("bob balance = %v, want 100", got)
	}

	// Second pull exceeds remaining allowance.
	err = l.TransferFrom(dai, "market", "alice", "bob", big.NewInt(100))
	if !errors.Is(err, domain.ErrInsufficientAllowance) {
		t.Errorf("expected ErrInsufficientAllowance, got %v", err)
	}
}

func TestLedger_TransferFromSelf(t *testing.T) {
	l := newTestLedger(t)
	l.Mint(dai, "alice", big.NewInt(100))

	// Moving own funds needs no allowance.
	if err := l.TransferFrom(dai, "alice", "alice", "bob", big.NewInt(40)); err != nil {
		t.Fatalf("self TransferFrom failed: %v", err)
	}
	if got := l.BalanceOf(dai, "bob"); got.Cmp(big.NewInt(40)) != 0 {
		t.Errorf("bob balance = %v, want 40", got)
	}
}

func TestLedger_BalanceCopyIsolation(t *testing.T) {
	l := newTestLedger(t)
	l.Mint(dai, "alice", big.NewInt(100))

	got := l.BalanceOf(dai, "alice")
	got.SetInt64(0)

	if l.BalanceOf(dai, "alice").Cmp(big.NewInt(100)) != 0 {
		t.Error("BalanceOf must return a copy, not the live balance")
	}
}

func TestLedger_ImplementsPayLedger(t *testing.T) {
	var _ domain.PayLedger = (*Ledger)(nil)
}
