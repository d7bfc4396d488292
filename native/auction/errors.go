package auction

import "errors"

var (
	errNilState       = errors.New("auction engine: state not configured")
	errNilTokenLedger = errors.New("auction engine: token ledger not configured")
)

var (
	ErrUnauthorized           = errors.New("auction: unauthorized")
	ErrInvalidParameter       = errors.New("auction: parameter must be non-zero")
	ErrAuctionNotFound        = errors.New("auction: auction not found")
	ErrAuctionInactive        = errors.New("auction: auction no longer active")
	ErrAuctionStillActive     = errors.New("auction: auction has not expired yet")
	ErrInvalidLotCount        = errors.New("auction: lot count out of range")
	ErrInsufficientCollateral = errors.New("auction: balance does not cover the lot commitment")
)
