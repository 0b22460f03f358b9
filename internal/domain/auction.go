package domain

import "math/big"

// AuctionStatus is the lifecycle position of one auction instance.
type AuctionStatus int

const (
	AuctionOpen AuctionStatus = iota + 1
	AuctionEnded
	AuctionSettled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionOpen:
		return "OPEN"
	case AuctionEnded:
		return "ENDED"
	case AuctionSettled:
		return "SETTLED"
	default:
		return "NONE"
	}
}

// Auction is one time-boxed bidding instance over a single asset. The asset
// sits in auction escrow from creation until settlement or cancellation.
type Auction struct {
	Contract     string   `json:"contract"`
	TokenID      uint64   `json:"token_id"`
	Seller       string   `json:"seller"`
	PayToken     string   `json:"pay_token"`
	ReservePrice *big.Int `json:"reserve_price"`
	StartTime    int64    `json:"start_time"`
	EndTime      int64    `json:"end_time"`
	Resulted     bool     `json:"resulted"`
}

// Status derives the lifecycle state at the given time.
func (a *Auction) Status(now int64) AuctionStatus {
	if a.Resulted {
		return AuctionSettled
	}
	if now >= a.EndTime {
		return AuctionEnded
	}
	return AuctionOpen
}

// Open reports whether a bid can be placed at the given time.
func (a *Auction) Open(now int64) bool {
	return !a.Resulted && now >= a.StartTime && now < a.EndTime
}

// Bid is the single highest standing bid on an auction. The bid amount is
// escrowed in the auction's ledger account; at most one bidder's funds are
// held at any time.
type Bid struct {
	Bidder  string   `json:"bidder"`
	Amount  *big.Int `json:"amount"`
	BidTime int64    `json:"bid_time"`
}
