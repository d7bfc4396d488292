package rewards

import "github.com/ethereum/go-ethereum/common"

// validateWeights checks a proposed market/weight set: equal lengths, every
// weight at most 100%, and the sum exactly 100%.
func validateWeights(markets []common.Address, weights []uint64) error {
	if len(markets) == 0 {
		return ErrNoMarkets
	}
	if len(markets) != len(weights) {
		return ErrWeightLengthMismatch
	}
	var sum uint64
	for i, w := range weights {
		if markets[i] == (common.Address{}) {
			return ErrZeroAddress
		}
		if w > 10_000 {
			return ErrWeightAboveMax
		}
		sum += w
	}
	if sum != 10_000 {
		return ErrWeightSumMismatch
	}
	return nil
}

// UpdateRewardWeights atomically replaces the market list and weight set of
// a reward token. Accrual is settled for every currently listed market (so
// removed markets keep their historical accrual) and for every newly listed
// market (so its clock is initialised) before the replacement takes effect.
// Any validation failure leaves state untouched.
func (e *Engine) UpdateRewardWeights(caller, token common.Address, markets []common.Address, weights []uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.requireGovernor(caller); err != nil {
		return err
	}
	if err := validateWeights(markets, weights); err != nil {
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
	for _, market := range markets {
		if err := e.updateMarketRewards(market, now); err != nil {
			return err
		}
	}

	next := &RewardTokenInfo{
		Token:                info.Token,
		Paused:               info.Paused,
		InitialTimestamp:     info.InitialTimestamp,
		InitialInflationRate: copyBigInt(info.InitialInflationRate),
		ReductionFactor:      copyBigInt(info.ReductionFactor),
		Markets:              append([]common.Address(nil), markets...),
		Weights:              append([]uint64(nil), weights...),
	}
	for _, old := range info.Markets {
		if !next.hasMarket(old) {
			e.emit(newMarketRemovedEvent(token, old))
		}
	}
	if err := e.state.PutRewardToken(next); err != nil {
		return err
	}
	for i, market := range markets {
		e.emit(newWeightUpdatedEvent(token, market, weights[i]))
	}
	return nil
}
