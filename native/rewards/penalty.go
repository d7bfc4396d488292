package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// removalScale returns the wad-scaled fraction of newly accrued rewards a
// liquidity removal keeps: elapsed/threshold, capped at 1. A full penalty
// (zero kept) applies immediately after a position change and tapers
// linearly to nothing once the threshold has elapsed.
func (e *Engine) removalScale(user, market common.Address, now uint64) (*big.Int, error) {
	if e.penalty == nil {
		return new(big.Int).Set(wad), nil
	}
	start, ok, err := e.state.WithdrawTimerStart(user, market)
	if err != nil {
		return nil, err
	}
	if !ok {
		return new(big.Int).Set(wad), nil
	}
	var elapsed uint64
	if now > start {
		elapsed = now - start
	}
	threshold := e.penalty.EarlyWithdrawalThreshold
	if elapsed >= threshold {
		return new(big.Int).Set(wad), nil
	}
	scale := new(big.Int).SetUint64(elapsed)
	scale.Mul(scale, wad)
	scale.Quo(scale, new(big.Int).SetUint64(threshold))
	return scale, nil
}

// accrualBlocked reports whether a claim-triggered accrual must refuse to
// run for a market: once rewards are claimed the penalty can no longer be
// applied retroactively, so accrual waits out the threshold.
func (e *Engine) accrualBlocked(user, market common.Address, now uint64) (bool, error) {
	if e.penalty == nil {
		return false, nil
	}
	start, ok, err := e.state.WithdrawTimerStart(user, market)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	var elapsed uint64
	if now > start {
		elapsed = now - start
	}
	return elapsed < e.penalty.EarlyWithdrawalThreshold, nil
}

// touchWithdrawTimer applies the timer rules after a position change: any
// add or partial removal restarts the timer, a full removal clears it.
func (e *Engine) touchWithdrawTimer(user, market common.Address, next *big.Int, now uint64) error {
	if e.penalty == nil {
		return nil
	}
	if next.Sign() == 0 {
		return e.state.ClearWithdrawTimer(user, market)
	}
	return e.state.SetWithdrawTimerStart(user, market, now)
}
