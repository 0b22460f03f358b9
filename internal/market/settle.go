package market

import (
	"math/big"

	"nftmarket_go/internal/domain"
)

// paymentLeg is one credit of a settlement: fee, royalty or proceeds.
type paymentLeg struct {
	to     string
	amount *big.Int
	op     string
}

// settle pulls each leg from the payer on the authority of the allowance
// granted to the marketplace escrow account. If a leg fails, every leg
// already paid is unwound before the error is returned, so the payer's
// balance and allowance are exactly as they were.
func (m *Marketplace) settle(payToken, payer string, legs []paymentLeg) error {
	for i, leg := range legs {
		if leg.amount.Sign() == 0 || leg.to == "" {
			continue
		}
		err := m.deps.Ledger.TransferFrom(payToken, m.cfg.EscrowAccount, payer, leg.to, leg.amount)
		if err != nil {
			m.unwind(payToken, payer, legs[:i])
			return domain.NewTransferError(leg.op, err)
		}
	}
	return nil
}

// unwind reverses paid legs: funds move back to the payer and the consumed
// allowance is restored.
func (m *Marketplace) unwind(payToken, payer string, paid []paymentLeg) {
	refunded := new(big.Int)
	for _, leg := range paid {
		if leg.amount.Sign() == 0 || leg.to == "" {
			continue
		}
		if err := m.deps.Ledger.Transfer(payToken, leg.to, payer, leg.amount); err != nil {
			// Refund can only fail if the payee already moved the funds,
			// impossible while the engine mutex is held.
			continue
		}
		refunded.Add(refunded, leg.amount)
	}
	if refunded.Sign() > 0 {
		allowance := m.deps.Ledger.Allowance(payToken, payer, m.cfg.EscrowAccount)
		allowance.Add(allowance, refunded)
		m.deps.Ledger.Approve(payToken, payer, m.cfg.EscrowAccount, allowance)
	}
}
