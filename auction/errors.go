package auction

import "errors"

// Request-surface and auction errors. All of them reach HTTP clients as a
// 500 with the message text; background loops log and continue.
var (
	ErrAlreadyRegistered = errors.New("auction: builder already registered")
	ErrNotRegistered     = errors.New("auction: builder is not registered")
	ErrAccessRestricted  = errors.New("auction: access restricted")
	ErrInvalidPubkey     = errors.New("auction: invalid builder pubkey")

	ErrDuplicate  = errors.New("auction: transaction already in pool")
	ErrInvalidTx  = errors.New("auction: invalid transaction")
	ErrTxNotFound = errors.New("auction: transaction is not in the pool")

	ErrSoldAlready  = errors.New("auction: transaction is no longer biddable")
	ErrBelowReserve = errors.New("auction: bid below the reserve price")
	ErrBidMismatch  = errors.New("auction: bid for the wrong transaction")
)
