package domain

import "errors"

// ErrorClass partitions every rejection the engines can produce.
// Rejections never mutate state; a transfer failure aborts the whole operation.
type ErrorClass int

const (
	ClassUnknown ErrorClass = iota
	ClassValidation
	ClassAuthorization
	ClassStateConflict
	ClassTransfer
)

// Classified is implemented by errors that carry a rejection class.
type Classified interface {
	error
	Class() ErrorClass
}

// ClassOf extracts the class of an error, ClassUnknown for plain errors.
func ClassOf(err error) ErrorClass {
	var c Classified
	if errors.As(err, &c) {
		return c.Class()
	}
	return ClassUnknown
}

// MarketError is a sentinel rejection with a fixed class.
type MarketError struct {
	Msg string
	Cls ErrorClass
}

func (e *MarketError) Error() string     { return e.Msg }
func (e *MarketError) Class() ErrorClass { return e.Cls }

var (
	// Validation
	ErrInvalidQuantity = &MarketError{"quantity must be at least one", ClassValidation}
	ErrInvalidPrice    = &MarketError{"price must be positive", ClassValidation}
	ErrInvalidDeadline = &MarketError{"deadline must be in the future", ClassValidation}
	ErrInvalidDuration = &MarketError{"end time must be after start time", ClassValidation}
	ErrTokenNotEnabled = &MarketError{"pay token not enabled", ClassValidation}
	ErrInvalidPayToken = &MarketError{"pay token does not match listing", ClassValidation}
	ErrRoyaltyTooHigh  = &MarketError{"royalty exceeds maximum rate", ClassValidation}
	ErrInvalidAddress  = &MarketError{"address must not be empty", ClassValidation}

	// Authorization
	ErrNotAdmin           = &MarketError{"caller is not the administrator", ClassAuthorization}
	ErrNotOwnerOrApproved = &MarketError{"caller is not owner or approved", ClassAuthorization}

	// State conflicts
	ErrListingNotFound         = &MarketError{"listing not found", ClassStateConflict}
	ErrItemNotBuyable          = &MarketError{"item not buyable", ClassStateConflict}
	ErrOfferNotFound           = &MarketError{"offer not found", ClassStateConflict}
	ErrOfferExpired            = &MarketError{"offer expired", ClassStateConflict}
	ErrRoyaltyAlreadySet       = &MarketError{"royalty already registered", ClassStateConflict}
	ErrCollectionNotRecognized = &MarketError{"collection not recognized", ClassStateConflict}
	ErrAuctionExists           = &MarketError{"auction already exists", ClassStateConflict}
	ErrAuctionNotFound         = &MarketError{"auction not found", ClassStateConflict}
	ErrAuctionNotOpen          = &MarketError{"auction not open", ClassStateConflict}
	ErrAuctionNotEnded         = &MarketError{"auction has not ended", ClassStateConflict}
	ErrAlreadyResulted         = &MarketError{"auction already resulted", ClassStateConflict}
	ErrBidTooLow               = &MarketError{"bid below required minimum", ClassStateConflict}
	ErrBidsPlaced              = &MarketError{"auction already has bids", ClassStateConflict}
	ErrContractExists          = &MarketError{"contract already registered", ClassStateConflict}
	ErrContractNotFound        = &MarketError{"contract not found", ClassStateConflict}
	ErrTokenAlreadyAdded       = &MarketError{"token already added", ClassStateConflict}
	ErrTokenNotFound           = &MarketError{"token not found", ClassStateConflict}
)

// Ledger and asset-contract failures. These surface through TransferError
// when they abort a settlement.
var (
	ErrUnknownToken          = &MarketError{"unknown token", ClassTransfer}
	ErrInsufficientBalance   = &MarketError{"insufficient balance", ClassTransfer}
	ErrInsufficientAllowance = &MarketError{"insufficient allowance", ClassTransfer}
	ErrUnknownTokenID        = &MarketError{"unknown token id", ClassTransfer}
	ErrNotTokenOwner         = &MarketError{"from address is not token owner", ClassTransfer}
)

// TransferError wraps a payment or asset-movement failure that aborted an
// operation. The operation's state is restored before this is returned.
type TransferError struct {
	Op  string // which settlement leg failed, e.g. "pay royalty"
	Err error
}

func (e *TransferError) Error() string     { return e.Op + ": " + e.Err.Error() }
func (e *TransferError) Class() ErrorClass { return ClassTransfer }
func (e *TransferError) Unwrap() error     { return e.Err }

// NewTransferError wraps a collaborator failure with the leg that failed.
func NewTransferError(op string, err error) *TransferError {
	return &TransferError{Op: op, Err: err}
}
