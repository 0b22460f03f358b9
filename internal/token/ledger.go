// Package token implements the fungible payment-token world the engines
// settle against: per-token balances and spender allowances with
// all-or-nothing transfers.
package token

import (
	"math/big"
	"sync"

	"nftmarket_go/internal/domain"
)

// TokenInfo is the descriptive record of one fungible token.
type TokenInfo struct {
	Address  string
	Name     string
	Symbol   string
	Decimals int
}

// Ledger holds balances and allowances for every deployed payment token.
// It implements domain.PayLedger. Every mutating call either completes
// fully or returns an error leaving state untouched.
type Ledger struct {
	mu         sync.RWMutex
	tokens     map[string]TokenInfo
	balances   map[string]map[string]*big.Int            // token -> account -> amount
	allowances map[string]map[string]map[string]*big.Int // token -> owner -> spender
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		tokens:     make(map[string]TokenInfo),
		balances:   make(map[string]map[string]*big.Int),
		allowances: make(map[string]map[string]map[string]*big.Int),
	}
}

// Deploy registers a new token under its address. Re-deploying an existing
// address is rejected.
func (l *Ledger) Deploy(info TokenInfo) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.tokens[info.Address]; ok {
		return domain.ErrTokenAlreadyAdded
	}
	l.tokens[info.Address] = info
	l.balances[info.Address] = make(map[string]*big.Int)
	l.allowances[info.Address] = make(map[string]map[string]*big.Int)
	return nil
}

// Token returns the descriptive record for an address.
func (l *Ledger) Token(addr string) (TokenInfo, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	info, ok := l.tokens[addr]
	return info, ok
}

// Mint credits freshly issued units to an account. Used by the bootstrap
// and tests to seed balances, the ledger analogue of a faucet.
func (l *Ledger) Mint(token, account string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	book, ok := l.balances[token]
	if !ok {
		return domain.ErrUnknownToken
	}
	credit(book, account, amount)
	return nil
}

// BalanceOf returns a copy of the account balance, zero for unknown
// tokens or accounts.
func (l *Ledger) BalanceOf(token, account string) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if book, ok := l.balances[token]; ok {
		if bal, ok := book[account]; ok {
			return new(big.Int).Set(bal)
		}
	}
	return new(big.Int)
}

// Allowance returns a copy of what spender may move on owner's behalf.
func (l *Ledger) Allowance(token, owner, spender string) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if owners, ok := l.allowances[token]; ok {
		if spenders, ok := owners[owner]; ok {
			if amt, ok := spenders[spender]; ok {
				return new(big.Int).Set(amt)
			}
		}
	}
	return new(big.Int)
}

// Approve sets spender's allowance over owner's funds to amount.
func (l *Ledger) Approve(token, owner, spender string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	owners, ok := l.allowances[token]
	if !ok {
		return domain.ErrUnknownToken
	}
	spenders, ok := owners[owner]
	if !ok {
		spenders = make(map[string]*big.Int)
		owners[owner] = spenders
	}
	spenders[spender] = new(big.Int).Set(amount)
	return nil
}

// Transfer moves amount from one account to another.
func (l *Ledger) Transfer(token, from, to string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	book, ok := l.balances[token]
	if !ok {
		return domain.ErrUnknownToken
	}
	if err := debit(book, from, amount); err != nil {
		return err
	}
	credit(book, to, amount)
	return nil
}

// TransferFrom moves amount from `from` to `to` on the authority of
// spender's allowance, debiting the allowance by the same amount.
func (l *Ledger) TransferFrom(token, spender, from, to string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	book, ok := l.balances[token]
	if !ok {
		return domain.ErrUnknownToken
	}

	allowance := l.lookupAllowance(token, from, spender)
	if spender != from && allowance.Cmp(amount) < 0 {
		return domain.ErrInsufficientAllowance
	}

	if err := debit(book, from, amount); err != nil {
		return err
	}
	credit(book, to, amount)

	if spender != from {
		allowance.Sub(allowance, amount)
	}
	return nil
}

// lookupAllowance returns the live allowance entry. Must hold the lock.
func (l *Ledger) lookupAllowance(token, owner, spender string) *big.Int {
	owners := l.allowances[token]
	spenders, ok := owners[owner]
	if !ok {
		spenders = make(map[string]*big.Int)
		owners[owner] = spenders
	}
	amt, ok := spenders[spender]
	if !ok {
		amt = new(big.Int)
		spenders[spender] = amt
	}
	return amt
}

func credit(book map[string]*big.Int, account string, amount *big.Int) {
	bal, ok := book[account]
	if !ok {
		bal = new(big.Int)
		book[account] = bal
	}
	bal.Add(bal, amount)
}

func debit(book map[string]*big.Int, account string, amount *big.Int) error {
	bal, ok := book[account]
	if !ok || bal.Cmp(amount) < 0 {
		return domain.ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	return nil
}
