package rewards

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"perpsafety/core/types"
)

const (
	EventTypeRewardAccrued      = "rewards.accrued"
	EventTypeRewardClaimed      = "rewards.claimed"
	EventTypeShortfall          = "rewards.shortfall"
	EventTypePenaltyApplied     = "rewards.penalty.applied"
	EventTypePositionUpdated    = "rewards.position.updated"
	EventTypePositionRegistered = "rewards.position.registered"
	EventTypeTokenAdded         = "rewards.token.added"
	EventTypeTokenRemoved       = "rewards.token.removed"
	EventTypeTokenPaused        = "rewards.token.paused"
	EventTypeMarketRemoved      = "rewards.market.removed"
	EventTypeWeightUpdated      = "rewards.weight.updated"
	EventTypeInflationUpdated   = "rewards.inflation.updated"
	EventTypeReductionUpdated   = "rewards.reduction.updated"
)

type rewardEvent struct {
	evt *types.Event
}

func (e rewardEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e rewardEvent) Event() *types.Event { return e.evt }

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func addrString(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

func newRewardAccruedEvent(user, market, token common.Address, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeRewardAccrued, Attributes: map[string]string{
		"user":   addrString(user),
		"market": addrString(market),
		"token":  addrString(token),
		"amount": amountString(amount),
	}}
}

func newRewardClaimedEvent(user, token common.Address, amount, remaining *big.Int) *types.Event {
	return &types.Event{Type: EventTypeRewardClaimed, Attributes: map[string]string{
		"user":      addrString(user),
		"token":     addrString(token),
		"amount":    amountString(amount),
		"remaining": amountString(remaining),
	}}
}

func newShortfallEvent(token common.Address, unclaimed, available *big.Int) *types.Event {
	return &types.Event{Type: EventTypeShortfall, Attributes: map[string]string{
		"token":     addrString(token),
		"unclaimed": amountString(unclaimed),
		"available": amountString(available),
	}}
}

func newPenaltyAppliedEvent(user, market, token common.Address, withheld *big.Int) *types.Event {
	return &types.Event{Type: EventTypePenaltyApplied, Attributes: map[string]string{
		"user":     addrString(user),
		"market":   addrString(market),
		"token":    addrString(token),
		"withheld": amountString(withheld),
	}}
}

func newPositionUpdatedEvent(user, market common.Address, previous, current *big.Int) *types.Event {
	return &types.Event{Type: EventTypePositionUpdated, Attributes: map[string]string{
		"user":     addrString(user),
		"market":   addrString(market),
		"previous": amountString(previous),
		"current":  amountString(current),
	}}
}

func newPositionRegisteredEvent(user, market common.Address, position *big.Int) *types.Event {
	return &types.Event{Type: EventTypePositionRegistered, Attributes: map[string]string{
		"user":     addrString(user),
		"market":   addrString(market),
		"position": amountString(position),
	}}
}

func newTokenAddedEvent(info *RewardTokenInfo) *types.Event {
	attrs := map[string]string{
		"token":           addrString(info.Token),
		"inflationRate":   amountString(info.InitialInflationRate),
		"reductionFactor": amountString(info.ReductionFactor),
		"markets":         strconv.Itoa(len(info.Markets)),
	}
	return &types.Event{Type: EventTypeTokenAdded, Attributes: attrs}
}

func newTokenRemovedEvent(token common.Address, refund *big.Int) *types.Event {
	return &types.Event{Type: EventTypeTokenRemoved, Attributes: map[string]string{
		"token":  addrString(token),
		"refund": amountString(refund),
	}}
}

func newTokenPausedEvent(token common.Address, paused bool) *types.Event {
	return &types.Event{Type: EventTypeTokenPaused, Attributes: map[string]string{
		"token":  addrString(token),
		"paused": strconv.FormatBool(paused),
	}}
}

func newMarketRemovedEvent(token, market common.Address) *types.Event {
	return &types.Event{Type: EventTypeMarketRemoved, Attributes: map[string]string{
		"token":  addrString(token),
		"market": addrString(market),
	}}
}

func newWeightUpdatedEvent(token, market common.Address, weight uint64) *types.Event {
	return &types.Event{Type: EventTypeWeightUpdated, Attributes: map[string]string{
		"token":  addrString(token),
		"market": addrString(market),
		"weight": strconv.FormatUint(weight, 10),
	}}
}

func newInflationRateUpdatedEvent(token common.Address, rate *big.Int) *types.Event {
	return &types.Event{Type: EventTypeInflationUpdated, Attributes: map[string]string{
		"token": addrString(token),
		"rate":  amountString(rate),
	}}
}

func newReductionFactorUpdatedEvent(token common.Address, factor *big.Int) *types.Event {
	return &types.Event{Type: EventTypeReductionUpdated, Attributes: map[string]string{
		"token":  addrString(token),
		"factor": amountString(factor),
	}}
}
