// Package event defines the typed events the engines surface for off-chain
// observers and the bus that sequences and fans them out. Every event
// carries the full set of identifying keys and amounts needed to
// reconstruct state without re-querying.
package event

// Event is the common surface of all marketplace/auction events.
type Event interface {
	GetSeq() uint64
	GetTs() int64
	GetType() string
}

// Meta is embedded in every event; the bus stamps Seq and Ts on publish.
type Meta struct {
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"`
}

func (m *Meta) GetSeq() uint64 { return m.Seq }
func (m *Meta) GetTs() int64   { return m.Ts }

func (m *Meta) stamp(seq uint64, ts int64) {
	m.Seq = seq
	m.Ts = ts
}

// stampable is satisfied by every event via the embedded Meta.
type stampable interface {
	stamp(seq uint64, ts int64)
}

// Amounts are serialized as decimal strings: token base units exceed int64
// and JSON numbers lose precision past 2^53.

// ItemListed is emitted when an asset enters marketplace escrow.
type ItemListed struct {
	Meta
	Contract     string `json:"contract"`
	TokenID      uint64 `json:"token_id"`
	Seller       string `json:"seller"`
	Quantity     uint64 `json:"quantity"`
	PayToken     string `json:"pay_token"`
	PricePerItem string `json:"price_per_item"`
	StartingTime int64  `json:"starting_time"`
}

func (e *ItemListed) GetType() string { return "item_listed" }

// ItemUpdated is emitted when a listing's pay token or price changes.
type ItemUpdated struct {
	Meta
	Contract     string `json:"contract"`
	TokenID      uint64 `json:"token_id"`
	Seller       string `json:"seller"`
	PayToken     string `json:"pay_token"`
	PricePerItem string `json:"price_per_item"`
}

func (e *ItemUpdated) GetType() string { return "item_updated" }

// ItemCanceled is emitted when a listing is canceled and the asset returned.
type ItemCanceled struct {
	Meta
	Contract string `json:"contract"`
	TokenID  uint64 `json:"token_id"`
	Seller   string `json:"seller"`
}

func (e *ItemCanceled) GetType() string { return "item_canceled" }

// ItemSold is emitted on every settled sale, via direct buy or accepted
// offer. Fee, Royalty and Proceeds reconstruct Gross exactly.
type ItemSold struct {
	Meta
	Contract     string `json:"contract"`
	TokenID      uint64 `json:"token_id"`
	Seller       string `json:"seller"`
	Buyer        string `json:"buyer"`
	Quantity     uint64 `json:"quantity"`
	PayToken     string `json:"pay_token"`
	PricePerItem string `json:"price_per_item"`
	Gross        string `json:"gross"`
	Fee          string `json:"fee"`
	Royalty      string `json:"royalty"`
	Proceeds     string `json:"proceeds"`
}

func (e *ItemSold) GetType() string { return "item_sold" }

// OfferCreated is emitted when a standing offer is recorded.
type OfferCreated struct {
	Meta
	Contract     string `json:"contract"`
	TokenID      uint64 `json:"token_id"`
	Offerer      string `json:"offerer"`
	PayToken     string `json:"pay_token"`
	Quantity     uint64 `json:"quantity"`
	PricePerItem string `json:"price_per_item"`
	Deadline     int64  `json:"deadline"`
}

func (e *OfferCreated) GetType() string { return "offer_created" }

// OfferCanceled is emitted when an offerer withdraws a standing offer.
type OfferCanceled struct {
	Meta
	Contract string `json:"contract"`
	TokenID  uint64 `json:"token_id"`
	Offerer  string `json:"offerer"`
}

func (e *OfferCanceled) GetType() string { return "offer_canceled" }

// AuctionCreated is emitted when an asset enters auction escrow.
type AuctionCreated struct {
	Meta
	Contract     string `json:"contract"`
	TokenID      uint64 `json:"token_id"`
	Seller       string `json:"seller"`
	PayToken     string `json:"pay_token"`
	ReservePrice string `json:"reserve_price"`
	StartTime    int64  `json:"start_time"`
	EndTime      int64  `json:"end_time"`
}

func (e *AuctionCreated) GetType() string { return "auction_created" }

// BidPlaced is emitted after a bid is escrowed and the previous highest
// bidder refunded.
type BidPlaced struct {
	Meta
	Contract string `json:"contract"`
	TokenID  uint64 `json:"token_id"`
	Bidder   string `json:"bidder"`
	Amount   string `json:"amount"`
}

func (e *BidPlaced) GetType() string { return "bid_placed" }

// AuctionCancelled is emitted when a bid-less auction is withdrawn.
type AuctionCancelled struct {
	Meta
	Contract string `json:"contract"`
	TokenID  uint64 `json:"token_id"`
	Seller   string `json:"seller"`
}

func (e *AuctionCancelled) GetType() string { return "auction_cancelled" }

// AuctionResulted is emitted exactly once per auction instance. Winner is
// empty when the auction ended with no bids.
type AuctionResulted struct {
	Meta
	Contract string `json:"contract"`
	TokenID  uint64 `json:"token_id"`
	Seller   string `json:"seller"`
	Winner   string `json:"winner"`
	PayToken string `json:"pay_token"`
	Amount   string `json:"amount"`
	Fee      string `json:"fee"`
	Royalty  string `json:"royalty"`
	Proceeds string `json:"proceeds"`
}

func (e *AuctionResulted) GetType() string { return "auction_resulted" }

// ContractCreated is emitted when the factory provisions or recognizes a
// collection.
type ContractCreated struct {
	Meta
	Creator  string `json:"creator"`
	Contract string `json:"contract"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	MintFee  string `json:"mint_fee"`
}

func (e *ContractCreated) GetType() string { return "contract_created" }

// ContractDisabled is emitted when the factory derecognizes a collection.
type ContractDisabled struct {
	Meta
	Caller   string `json:"caller"`
	Contract string `json:"contract"`
}

func (e *ContractDisabled) GetType() string { return "contract_disabled" }
