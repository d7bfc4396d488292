package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// computeMultiplier evaluates the reward multiplier curve for a stake whose
// uninterrupted start time is start. The curve rises from 1 toward
// MaxMultiplier asymptotically:
//
//	m(d) = max - s*(max-1) / (d*(max-1) + s)
//
// with d the elapsed time in (fractional) days, all wad scaled. A zero start
// time means the user never staked and yields a zero multiplier.
func computeMultiplier(params *MultiplierParams, start, now uint64) *big.Int {
	if params == nil {
		return new(big.Int).Set(wad)
	}
	if start == 0 {
		return big.NewInt(0)
	}
	var elapsed uint64
	if now > start {
		elapsed = now - start
	}
	deltaDays := new(big.Int).SetUint64(elapsed)
	deltaDays.Mul(deltaDays, wad)
	deltaDays.Quo(deltaDays, new(big.Int).SetUint64(secondsPerDay))

	maxLessOne := new(big.Int).Sub(params.MaxMultiplier, wad)
	if maxLessOne.Sign() <= 0 {
		return copyBigInt(params.MaxMultiplier)
	}
	denominator := wadMul(deltaDays, maxLessOne)
	denominator.Add(denominator, params.SmoothingValue)
	term := wadDiv(wadMul(params.SmoothingValue, maxLessOne), denominator)
	return new(big.Int).Sub(params.MaxMultiplier, term)
}

// RewardMultiplier returns the current multiplier of a user in a market.
// Only the staking distributor carries a multiplier.
func (e *Engine) RewardMultiplier(user, market common.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.multiplier == nil {
		return nil, ErrMultiplierNotConfigured
	}
	start, err := e.state.MultiplierStart(user, market)
	if err != nil {
		return nil, err
	}
	return computeMultiplier(e.multiplier, start, e.now()), nil
}

// adjustMultiplierStart applies the anti-gaming start time rules after a
// position change:
//   - a full withdrawal clears the start time (multiplier back to zero),
//   - a partial withdrawal or a first stake restarts the clock at now,
//   - adding to an existing position shifts the start time forward by
//     (now - start) * added / newTotal, so a trivial early stake cannot age
//     the multiplier for a large late top-up.
func (e *Engine) adjustMultiplierStart(user, market common.Address, prev, next *big.Int, now uint64) error {
	if next.Sign() == 0 {
		return e.state.SetMultiplierStart(user, market, 0)
	}
	if prev.Sign() == 0 || next.Cmp(prev) < 0 {
		return e.state.SetMultiplierStart(user, market, now)
	}
	if next.Cmp(prev) == 0 {
		return nil
	}
	start, err := e.state.MultiplierStart(user, market)
	if err != nil {
		return err
	}
	if start == 0 || start > now {
		return e.state.SetMultiplierStart(user, market, now)
	}
	added := new(big.Int).Sub(next, prev)
	shift := new(big.Int).SetUint64(now - start)
	shift.Mul(shift, added)
	shift.Quo(shift, next)
	return e.state.SetMultiplierStart(user, market, start+shift.Uint64())
}
