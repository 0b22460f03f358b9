package domain

// CollectionRoyalty is the collection-level royalty record, set by the
// administrator once per asset contract. A token-level registration takes
// precedence over this for its specific token.
type CollectionRoyalty struct {
	Contract     string `json:"contract"`
	Creator      string `json:"creator"`
	RoyaltyBps   uint64 `json:"royalty_bps"`
	FeeRecipient string `json:"fee_recipient"`
}

// TokenKey identifies a single token within a collection.
type TokenKey struct {
	Contract string
	TokenID  uint64
}
