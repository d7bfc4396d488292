package rewards

import "math/big"

// Governance bounds for reward token registration and the staking multiplier
// curve. All values are wad scaled.
var (
	// MaxInflationRate caps the initial annual emission of a reward token
	// at 5 million tokens per year.
	MaxInflationRate = new(big.Int).Mul(big.NewInt(5_000_000), wad)
	// MinReductionFactor is 1, meaning the emission rate never increases.
	MinReductionFactor = new(big.Int).Set(wad)

	minMaxMultiplier  = new(big.Int).Set(wad)
	maxMaxMultiplier  = new(big.Int).Mul(big.NewInt(10), wad)
	minSmoothingValue = new(big.Int).Mul(big.NewInt(10), wad)
	maxSmoothingValue = new(big.Int).Mul(big.NewInt(100), wad)
)

// MaxRewardTokens bounds the registry so the per-market accrual loop stays
// cheap.
const MaxRewardTokens = 10

// MultiplierParams controls the time-grown reward multiplier used by the
// staking distributor. The multiplier rises asymptotically from 1 toward
// MaxMultiplier with uninterrupted staking time; larger SmoothingValue means
// a slower rise.
type MultiplierParams struct {
	MaxMultiplier  *big.Int
	SmoothingValue *big.Int
}

// Validate ensures the curve parameters fall within governance bounds.
func (p MultiplierParams) Validate() error {
	if p.MaxMultiplier == nil || p.MaxMultiplier.Cmp(minMaxMultiplier) < 0 || p.MaxMultiplier.Cmp(maxMaxMultiplier) > 0 {
		return ErrInvalidMaxMultiplier
	}
	if p.SmoothingValue == nil || p.SmoothingValue.Cmp(minSmoothingValue) < 0 || p.SmoothingValue.Cmp(maxSmoothingValue) > 0 {
		return ErrInvalidSmoothingValue
	}
	return nil
}

// PenaltyParams controls the early withdrawal penalty used by the perpetual
// LP distributor. Rewards accrued on a liquidity removal are withheld
// linearly until the threshold has elapsed since the last position change.
type PenaltyParams struct {
	EarlyWithdrawalThreshold uint64
}

// Validate ensures the threshold is usable.
func (p PenaltyParams) Validate() error {
	if p.EarlyWithdrawalThreshold == 0 {
		return ErrInvalidThreshold
	}
	return nil
}
