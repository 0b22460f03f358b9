// Package pricefeed holds advisory reference-unit quotes for payment
// tokens. Quotes are display/validation data only and never enter
// settlement arithmetic.
package pricefeed

import (
	"sync"

	"github.com/shopspring/decimal"

	"nftmarket_go/internal/domain"
)

// Feed stores the latest quote per payment token against the reference
// unit. Only allow-listed tokens may carry a quote.
type Feed struct {
	mu     sync.RWMutex
	admin  string
	tokens domain.TokenGate

	oracles map[string]string          // token -> oracle identity
	quotes  map[string]decimal.Decimal // token -> price in reference units
}

// New creates a feed gated by the payment-token allow-list.
func New(admin string, tokens domain.TokenGate) *Feed {
	return &Feed{
		admin:   admin,
		tokens:  tokens,
		oracles: make(map[string]string),
		quotes:  make(map[string]decimal.Decimal),
	}
}

// RegisterOracle binds an oracle identity to a token. Administrator only;
// the token must be allow-listed.
func (f *Feed) RegisterOracle(caller, token, oracle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller != f.admin {
		return domain.ErrNotAdmin
	}
	if !f.tokens.Enabled(token) {
		return domain.ErrTokenNotEnabled
	}
	if oracle == "" {
		return domain.ErrInvalidAddress
	}
	f.oracles[token] = oracle
	return nil
}

// UpdatePrice records a new quote. Only the registered oracle for the
// token (or the administrator) may update it.
func (f *Feed) UpdatePrice(caller, token string, price decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller != f.admin && caller != f.oracles[token] {
		return domain.ErrNotAdmin
	}
	if price.IsNegative() {
		return domain.ErrInvalidPrice
	}
	f.quotes[token] = price
	return nil
}

// Price returns the latest quote for a token.
func (f *Feed) Price(token string) (decimal.Decimal, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p, ok := f.quotes[token]
	return p, ok
}

// TransferAdmin hands the feed to a new administrator.
func (f *Feed) TransferAdmin(caller, newAdmin string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller != f.admin {
		return domain.ErrNotAdmin
	}
	if newAdmin == "" {
		return domain.ErrInvalidAddress
	}
	f.admin = newAdmin
	return nil
}
