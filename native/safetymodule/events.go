package safetymodule

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"perpsafety/core/types"
)

const (
	EventTypeTokenRegistered = "safety.token.registered"
	EventTypeTokenRemoved    = "safety.token.removed"
	EventTypeSlashed         = "safety.slashed"
	EventTypeSettled         = "safety.auction.settled"
	EventTypeCooldownStarted = "safety.cooldown.started"
	EventTypePaused          = "safety.paused"
)

type moduleEvent struct {
	evt *types.Event
}

func (e moduleEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e moduleEvent) Event() *types.Event { return e.evt }

func addrAttr(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

func amountAttr(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

func newTokenRegisteredEvent(token common.Address) *types.Event {
	return &types.Event{
		Type:       EventTypeTokenRegistered,
		Attributes: map[string]string{"token": addrAttr(token)},
	}
}

func newTokenRemovedEvent(token common.Address) *types.Event {
	return &types.Event{
		Type:       EventTypeTokenRemoved,
		Attributes: map[string]string{"token": addrAttr(token)},
	}
}

func newSlashedEvent(token common.Address, amount *big.Int, auctionID uint64) *types.Event {
	return &types.Event{
		Type: EventTypeSlashed,
		Attributes: map[string]string{
			"token":     addrAttr(token),
			"amount":    amountAttr(amount),
			"auctionId": strconv.FormatUint(auctionID, 10),
		},
	}
}

func newSettledEvent(token common.Address, auctionID uint64, unsold, raised *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeSettled,
		Attributes: map[string]string{
			"token":     addrAttr(token),
			"auctionId": strconv.FormatUint(auctionID, 10),
			"unsold":    amountAttr(unsold),
			"raised":    amountAttr(raised),
		},
	}
}

func newCooldownStartedEvent(user common.Address, start uint64) *types.Event {
	return &types.Event{
		Type: EventTypeCooldownStarted,
		Attributes: map[string]string{
			"user":  addrAttr(user),
			"start": strconv.FormatUint(start, 10),
		},
	}
}

func newPausedEvent(paused bool) *types.Event {
	return &types.Event{
		Type:       EventTypePaused,
		Attributes: map[string]string{"paused": strconv.FormatBool(paused)},
	}
}
