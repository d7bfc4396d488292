package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "perpsafety/native/common"
)

// settleUserRewards advances the user's accumulator snapshots in one market
// and credits newly accrued rewards. prevPos is the position held over the
// settled interval. removalScale, when below 1, withholds the complement of
// each newly accrued amount (the early withdrawal penalty); nil means no
// scaling.
func (e *Engine) settleUserRewards(user, market common.Address, prevPos, removalScale *big.Int, now uint64) error {
	registry, err := e.loadRegistry()
	if err != nil {
		return err
	}
	var multiplier *big.Int
	if e.multiplier != nil {
		start, err := e.state.MultiplierStart(user, market)
		if err != nil {
			return err
		}
		multiplier = computeMultiplier(e.multiplier, start, now)
	}
	for _, token := range registry.addresses() {
		accumulator, err := e.state.Accumulator(token, market)
		if err != nil {
			return err
		}
		accumulator = copyBigInt(accumulator)
		seen, err := e.state.LastSeenAccumulator(user, token, market)
		if err != nil {
			return err
		}
		seen = copyBigInt(seen)
		if seen.Cmp(accumulator) > 0 {
			// The token was removed and later re-registered, leaving a
			// stale snapshot ahead of the fresh accumulator. Reset the
			// snapshot without attributing rewards.
			if err := e.state.SetLastSeenAccumulator(user, token, market, accumulator); err != nil {
				return err
			}
			continue
		}
		if seen.Cmp(accumulator) == 0 {
			continue
		}
		delta := new(big.Int).Sub(accumulator, seen)
		newRewards := new(big.Int).Mul(copyBigInt(prevPos), delta)
		newRewards.Quo(newRewards, wad)
		if multiplier != nil {
			newRewards = wadMul(newRewards, multiplier)
		}
		if removalScale != nil && removalScale.Cmp(wad) < 0 {
			kept := wadMul(newRewards, removalScale)
			withheld := new(big.Int).Sub(newRewards, kept)
			if withheld.Sign() > 0 {
				e.emit(newPenaltyAppliedEvent(user, market, token, withheld))
			}
			newRewards = kept
		}
		if err := e.state.SetLastSeenAccumulator(user, token, market, accumulator); err != nil {
			return err
		}
		if newRewards.Sign() <= 0 {
			continue
		}
		accrued, err := e.state.AccruedRewards(user, token)
		if err != nil {
			return err
		}
		accrued = new(big.Int).Add(copyBigInt(accrued), newRewards)
		if err := e.state.SetAccruedRewards(user, token, accrued); err != nil {
			return err
		}
		unclaimed, err := e.state.TotalUnclaimed(token)
		if err != nil {
			return err
		}
		unclaimed = new(big.Int).Add(copyBigInt(unclaimed), newRewards)
		if err := e.state.SetTotalUnclaimed(token, unclaimed); err != nil {
			return err
		}
		e.emit(newRewardAccruedEvent(user, market, token, newRewards))
		if e.reserve != nil {
			balance, err := e.reserve.Balance(token)
			if err != nil {
				return err
			}
			if unclaimed.Cmp(balance) > 0 {
				e.emit(newShortfallEvent(token, unclaimed, balance))
			}
		}
	}
	return nil
}

// UpdatePosition is the position-changed hook, invoked synchronously by the
// registered collaborator whenever a user's balance in a market changes. The
// new position is passed by value; the previous position is the ledger's own
// snapshot, so the distributor never re-queries the caller mid-transition.
func (e *Engine) UpdatePosition(caller, market, user common.Address, newPosition *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if caller != e.controller {
		return ErrUnauthorized
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if user == (common.Address{}) || market == (common.Address{}) {
		return ErrZeroAddress
	}
	if newPosition == nil || newPosition.Sign() < 0 {
		return ErrZeroAddress
	}
	now := e.now()
	if err := e.updateMarketRewards(market, now); err != nil {
		return err
	}
	prev, err := e.state.Position(user, market)
	if err != nil {
		return err
	}
	prev = copyBigInt(prev)

	var removalScale *big.Int
	if e.penalty != nil && newPosition.Cmp(prev) < 0 {
		removalScale, err = e.removalScale(user, market, now)
		if err != nil {
			return err
		}
	}
	if err := e.settleUserRewards(user, market, prev, removalScale, now); err != nil {
		return err
	}
	if e.multiplier != nil {
		if err := e.adjustMultiplierStart(user, market, prev, newPosition, now); err != nil {
			return err
		}
	}
	if err := e.touchWithdrawTimer(user, market, newPosition, now); err != nil {
		return err
	}
	if err := e.state.SetPosition(user, market, copyBigInt(newPosition)); err != nil {
		return err
	}
	total, err := e.state.TotalLiquidity(market)
	if err != nil {
		return err
	}
	total = new(big.Int).Add(copyBigInt(total), newPosition)
	total.Sub(total, prev)
	if total.Sign() < 0 {
		total = big.NewInt(0)
	}
	if err := e.state.SetTotalLiquidity(market, total); err != nil {
		return err
	}
	e.emit(newPositionUpdatedEvent(user, market, prev, newPosition))
	return nil
}

// RegisterPositions seeds the ledger for a user whose balance predates the
// distributor. The snapshot starts at the current accumulator, so no rewards
// are attributed to pre-registration time. Registering an already tracked
// non-zero position fails.
func (e *Engine) RegisterPositions(user common.Address, markets []common.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if user == (common.Address{}) {
		return ErrZeroAddress
	}
	registry, err := e.loadRegistry()
	if err != nil {
		return err
	}
	now := e.now()
	for _, market := range markets {
		stored, err := e.state.Position(user, market)
		if err != nil {
			return err
		}
		if stored != nil && stored.Sign() != 0 {
			return ErrPositionAlreadyRegistered
		}
		if err := e.updateMarketRewards(market, now); err != nil {
			return err
		}
		live, err := e.markets.CurrentPosition(user, market)
		if err != nil {
			return err
		}
		live = copyBigInt(live)
		for _, token := range registry.addresses() {
			accumulator, err := e.state.Accumulator(token, market)
			if err != nil {
				return err
			}
			if err := e.state.SetLastSeenAccumulator(user, token, market, copyBigInt(accumulator)); err != nil {
				return err
			}
		}
		if err := e.state.SetPosition(user, market, live); err != nil {
			return err
		}
		if live.Sign() > 0 {
			total, err := e.state.TotalLiquidity(market)
			if err != nil {
				return err
			}
			total = new(big.Int).Add(copyBigInt(total), live)
			if err := e.state.SetTotalLiquidity(market, total); err != nil {
				return err
			}
			if e.multiplier != nil {
				if err := e.state.SetMultiplierStart(user, market, now); err != nil {
					return err
				}
			}
			if e.penalty != nil {
				if err := e.state.SetWithdrawTimerStart(user, market, now); err != nil {
					return err
				}
			}
		}
		e.emit(newPositionRegisteredEvent(user, market, live))
	}
	return nil
}

// AccrueRewards runs the claim-triggered accrual for one user in one market.
// The ledger's stored position must still match the collaborator's live
// balance; a mismatch means a position change bypassed the hook and fails
// loudly rather than silently resyncing.
func (e *Engine) AccrueRewards(market, user common.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	now := e.now()
	if err := e.updateMarketRewards(market, now); err != nil {
		return err
	}
	stored, err := e.state.Position(user, market)
	if err != nil {
		return err
	}
	stored = copyBigInt(stored)
	live, err := e.markets.CurrentPosition(user, market)
	if err != nil {
		return err
	}
	if stored.Cmp(copyBigInt(live)) != 0 {
		return ErrPositionOutOfSync
	}
	blocked, err := e.accrualBlocked(user, market, now)
	if err != nil {
		return err
	}
	if blocked {
		return ErrEarlyRewardAccrual
	}
	return e.settleUserRewards(user, market, stored, nil, now)
}
