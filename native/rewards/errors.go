package rewards

import "errors"

var (
	errNilState        = errors.New("rewards engine: state not configured")
	errNilMarketSource = errors.New("rewards engine: market source not configured")
	errNilReserve      = errors.New("rewards engine: reserve not configured")
)

var (
	ErrUnauthorized              = errors.New("rewards: unauthorized")
	ErrZeroAddress               = errors.New("rewards: zero address")
	ErrTokenAlreadyRegistered    = errors.New("rewards: reward token already registered")
	ErrTokenNotRegistered        = errors.New("rewards: reward token not registered")
	ErrTooManyRewardTokens       = errors.New("rewards: reward token limit reached")
	ErrAboveMaxInflationRate     = errors.New("rewards: initial inflation rate above maximum")
	ErrBelowMinReductionFactor   = errors.New("rewards: reduction factor below minimum")
	ErrWeightLengthMismatch      = errors.New("rewards: market and weight lengths differ")
	ErrWeightAboveMax            = errors.New("rewards: weight exceeds 100%")
	ErrWeightSumMismatch         = errors.New("rewards: weights must sum to 100%")
	ErrNoMarkets                 = errors.New("rewards: no markets supplied")
	ErrPositionAlreadyRegistered = errors.New("rewards: position already registered")
	ErrPositionOutOfSync         = errors.New("rewards: ledger position does not match live balance")
	ErrEarlyRewardAccrual        = errors.New("rewards: early withdrawal threshold not yet elapsed")
	ErrMultiplierNotConfigured   = errors.New("rewards: multiplier not configured for this distributor")
	ErrInvalidMaxMultiplier      = errors.New("rewards: max multiplier out of bounds")
	ErrInvalidSmoothingValue     = errors.New("rewards: smoothing value out of bounds")
	ErrInvalidThreshold          = errors.New("rewards: early withdrawal threshold must be positive")
)
