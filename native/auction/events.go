package auction

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"perpsafety/core/types"
)

const (
	EventTypeAuctionStarted    = "auction.started"
	EventTypeLotsBought        = "auction.lots_bought"
	EventTypeAuctionCompleted  = "auction.completed"
	EventTypeAuctionTerminated = "auction.terminated"
	EventTypeFundsWithdrawn    = "auction.funds_withdrawn"
)

type auctionEvent struct {
	evt *types.Event
}

func (e auctionEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e auctionEvent) Event() *types.Event { return e.evt }

func baseAttributes(a *Auction) map[string]string {
	if a == nil {
		return map[string]string{}
	}
	return map[string]string{
		"id":    strconv.FormatUint(a.ID, 10),
		"token": strings.ToLower(a.Token.Hex()),
	}
}

func newStartedEvent(a *Auction) *types.Event {
	attrs := baseAttributes(a)
	attrs["lotPrice"] = a.LotPrice.String()
	attrs["initialLotSize"] = a.InitialLotSize.String()
	attrs["numLots"] = strconv.FormatUint(a.NumLots, 10)
	attrs["endTime"] = strconv.FormatUint(a.EndTime, 10)
	return &types.Event{Type: EventTypeAuctionStarted, Attributes: attrs}
}

func newLotsBoughtEvent(a *Auction, buyer common.Address, lots uint64, lotSize, payment *big.Int) *types.Event {
	attrs := baseAttributes(a)
	attrs["buyer"] = strings.ToLower(buyer.Hex())
	attrs["lots"] = strconv.FormatUint(lots, 10)
	attrs["lotSize"] = lotSize.String()
	attrs["payment"] = payment.String()
	attrs["remainingLots"] = strconv.FormatUint(a.RemainingLots, 10)
	return &types.Event{Type: EventTypeLotsBought, Attributes: attrs}
}

func newCompletedEvent(a *Auction, unsold *big.Int) *types.Event {
	attrs := baseAttributes(a)
	attrs["tokensSold"] = a.TotalTokensSold.String()
	attrs["fundsRaised"] = a.TotalFundsRaised.String()
	attrs["unsold"] = unsold.String()
	return &types.Event{Type: EventTypeAuctionCompleted, Attributes: attrs}
}

func newTerminatedEvent(a *Auction, unsold *big.Int) *types.Event {
	attrs := baseAttributes(a)
	attrs["tokensSold"] = a.TotalTokensSold.String()
	attrs["fundsRaised"] = a.TotalFundsRaised.String()
	attrs["unsold"] = unsold.String()
	return &types.Event{Type: EventTypeAuctionTerminated, Attributes: attrs}
}

func newFundsWithdrawnEvent(to common.Address, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeFundsWithdrawn, Attributes: map[string]string{
		"to":     strings.ToLower(to.Hex()),
		"amount": amount.String(),
	}}
}
