package rewards

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "perpsafety/native/common"
	"perpsafety/observability"
)

// ClaimRewards settles accrual for every market the user is tracked in and
// then pays out the requested reward tokens from the reserve. Distribution
// is capped at the reserve's balance: a shortfall pays what is available,
// leaves the remainder accrued, and emits a shortfall signal, so the call is
// safe to repeat as the reserve refills.
func (e *Engine) ClaimRewards(user common.Address, tokens []common.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.reserve == nil {
		return errNilReserve
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if user == (common.Address{}) {
		return ErrZeroAddress
	}
	for i := 0; i < e.markets.NumMarkets(); i++ {
		market, err := e.markets.MarketAddress(i)
		if err != nil {
			return err
		}
		err = e.AccrueRewards(market, user)
		if errors.Is(err, ErrEarlyRewardAccrual) {
			// The penalty window is still open for this market; its
			// rewards stay pending at the accumulator level until a later
			// claim.
			continue
		}
		if err != nil {
			return err
		}
	}
	for _, token := range tokens {
		amount, err := e.state.AccruedRewards(user, token)
		if err != nil {
			return err
		}
		amount = copyBigInt(amount)
		if amount.Sign() == 0 {
			continue
		}
		balance, err := e.reserve.Balance(token)
		if err != nil {
			return err
		}
		pay := minBigInt(amount, copyBigInt(balance))
		if pay.Cmp(amount) < 0 {
			e.emit(newShortfallEvent(token, amount, balance))
			observability.Rewards().RecordShortfall(token.Hex())
		}
		if pay.Sign() == 0 {
			continue
		}
		// Ledger settles before the external transfer.
		remaining := new(big.Int).Sub(amount, pay)
		if err := e.state.SetAccruedRewards(user, token, remaining); err != nil {
			return err
		}
		unclaimed, err := e.state.TotalUnclaimed(token)
		if err != nil {
			return err
		}
		unclaimed = new(big.Int).Sub(copyBigInt(unclaimed), pay)
		if unclaimed.Sign() < 0 {
			unclaimed = big.NewInt(0)
		}
		if err := e.state.SetTotalUnclaimed(token, unclaimed); err != nil {
			return err
		}
		moved, err := e.reserve.Withdraw(token, user, pay)
		if err != nil {
			return err
		}
		e.emit(newRewardClaimedEvent(user, token, moved, remaining))
		observability.Rewards().RecordClaim(token.Hex())
	}
	return nil
}

// AddRewardToken registers a reward token with its decay parameters and an
// initial market weight set.
func (e *Engine) AddRewardToken(caller, token common.Address, initialRate, reductionFactor *big.Int, markets []common.Address, weights []uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.requireGovernor(caller); err != nil {
		return err
	}
	if token == (common.Address{}) {
		return ErrZeroAddress
	}
	if initialRate == nil || initialRate.Sign() < 0 || initialRate.Cmp(MaxInflationRate) > 0 {
		return ErrAboveMaxInflationRate
	}
	if reductionFactor == nil || reductionFactor.Cmp(MinReductionFactor) < 0 {
		return ErrBelowMinReductionFactor
	}
	if err := validateWeights(markets, weights); err != nil {
		return err
	}
	registry, err := e.loadRegistry()
	if err != nil {
		return err
	}
	if registry.contains(token) {
		return ErrTokenAlreadyRegistered
	}
	if registry.size() >= MaxRewardTokens {
		return ErrTooManyRewardTokens
	}
	now := e.now()
	for _, market := range markets {
		if err := e.updateMarketRewards(market, now); err != nil {
			return err
		}
	}
	info := &RewardTokenInfo{
		Token:                token,
		InitialTimestamp:     now,
		InitialInflationRate: copyBigInt(initialRate),
		ReductionFactor:      copyBigInt(reductionFactor),
		Markets:              append([]common.Address(nil), markets...),
		Weights:              append([]uint64(nil), weights...),
	}
	if err := e.state.PutRewardToken(info); err != nil {
		return err
	}
	registry.add(token)
	if err := e.state.SetRewardTokenList(registry.addresses()); err != nil {
		return err
	}
	e.emit(newTokenAddedEvent(info))
	return nil
}

// RemoveRewardToken deregisters a reward token. Accrual is settled for all
// its markets first so historical rewards stay correct, the weight entries
// are cleared, the token is swap-and-popped from the active list, and any
// reserve balance not already earmarked as unclaimed is returned to the
// caller.
func (e *Engine) RemoveRewardToken(caller, token common.Address) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.requireGovernor(caller); err != nil {
		return nil, err
	}
	info, err := e.state.GetRewardToken(token)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrTokenNotRegistered
	}
	now := e.now()
	if err := e.flushTokenMarkets(info, now); err != nil {
		return nil, err
	}
	for _, market := range info.Markets {
		e.emit(newMarketRemovedEvent(token, market))
	}
	registry, err := e.loadRegistry()
	if err != nil {
		return nil, err
	}
	registry.remove(token)
	if err := e.state.SetRewardTokenList(registry.addresses()); err != nil {
		return nil, err
	}
	if err := e.state.DeleteRewardToken(token); err != nil {
		return nil, err
	}
	refund := big.NewInt(0)
	if e.reserve != nil {
		balance, err := e.reserve.Balance(token)
		if err != nil {
			return nil, err
		}
		unclaimed, err := e.state.TotalUnclaimed(token)
		if err != nil {
			return nil, err
		}
		surplus := new(big.Int).Sub(copyBigInt(balance), copyBigInt(unclaimed))
		if surplus.Sign() > 0 {
			refund, err = e.reserve.Withdraw(token, caller, surplus)
			if err != nil {
				return nil, err
			}
		}
	}
	e.emit(newTokenRemovedEvent(token, refund))
	return refund, nil
}
