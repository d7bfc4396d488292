package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// inflationRate evaluates the decaying annual emission of a token at the
// given time: rate(t) = R0 / F^((t - t0) / 365 days), wad scaled with
// truncating division. Monotonically non-increasing in t.
func inflationRate(info *RewardTokenInfo, now uint64) *big.Int {
	if info == nil || info.InitialInflationRate == nil {
		return big.NewInt(0)
	}
	if info.ReductionFactor == nil || info.ReductionFactor.Cmp(wad) <= 0 {
		return copyBigInt(info.InitialInflationRate)
	}
	var elapsed uint64
	if now > info.InitialTimestamp {
		elapsed = now - info.InitialTimestamp
	}
	if elapsed == 0 {
		return copyBigInt(info.InitialInflationRate)
	}
	yearsWad := new(big.Int).SetUint64(elapsed)
	yearsWad.Mul(yearsWad, wad)
	yearsWad.Quo(yearsWad, new(big.Int).SetUint64(secondsPerYear))
	divisor := wadPow(info.ReductionFactor, yearsWad)
	if divisor.Sign() == 0 {
		return big.NewInt(0)
	}
	return wadDiv(info.InitialInflationRate, divisor)
}

// InflationRate returns the current annual emission rate of a registered
// reward token.
func (e *Engine) InflationRate(token common.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	info, err := e.state.GetRewardToken(token)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrTokenNotRegistered
	}
	return inflationRate(info, e.now()), nil
}

// UpdateInitialInflationRate changes the anchor emission rate of a token.
// Pending accrual is settled for every market first so the change never
// re-prices past periods.
func (e *Engine) UpdateInitialInflationRate(caller, token common.Address, newRate *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.requireGovernor(caller); err != nil {
		return err
	}
	if newRate == nil || newRate.Sign() < 0 || newRate.Cmp(MaxInflationRate) > 0 {
		return ErrAboveMaxInflationRate
	}
	info, err := e.state.GetRewardToken(token)
	if err != nil {
		return err
	}
	if info == nil {
		return ErrTokenNotRegistered
	}
	now := e.now()
	if err := e.flushTokenMarkets(info, now); err != nil {
		return err
	}
	info.InitialInflationRate = copyBigInt(newRate)
	if err := e.state.PutRewardToken(info); err != nil {
		return err
	}
	e.emit(newInflationRateUpdatedEvent(token, newRate))
	return nil
}

// UpdateReductionFactor changes the decay factor of a token. Pending accrual
// is settled for every market first so the change never re-prices past
// periods.
func (e *Engine) UpdateReductionFactor(caller, token common.Address, newFactor *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.requireGovernor(caller); err != nil {
		return err
	}
	if newFactor == nil || newFactor.Cmp(MinReductionFactor) < 0 {
		return ErrBelowMinReductionFactor
	}
	info, err := e.state.GetRewardToken(token)
	if err != nil {
		return err
	}
	if info == nil {
		return ErrTokenNotRegistered
	}
	now := e.now()
	if err := e.flushTokenMarkets(info, now); err != nil {
		return err
	}
	info.ReductionFactor = copyBigInt(newFactor)
	if err := e.state.PutRewardToken(info); err != nil {
		return err
	}
	e.emit(newReductionFactorUpdatedEvent(token, newFactor))
	return nil
}

// SetRewardTokenPaused toggles accrual for a token. The flush runs before
// the flag flips, so a paused window never accrues and historical ordering
// is preserved.
func (e *Engine) SetRewardTokenPaused(caller, token common.Address, paused bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.requireGovernor(caller); err != nil {
		return err
	}
	info, err := e.state.GetRewardToken(token)
	if err != nil {
		return err
	}
	if info == nil {
		return ErrTokenNotRegistered
	}
	now := e.now()
	if err := e.flushTokenMarkets(info, now); err != nil {
		return err
	}
	info.Paused = paused
	if err := e.state.PutRewardToken(info); err != nil {
		return err
	}
	e.emit(newTokenPausedEvent(token, paused))
	return nil
}
