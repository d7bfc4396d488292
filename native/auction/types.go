package auction

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Auction captures one lot-based liquidation sale of slashed collateral.
// Lots sell at a fixed price while the lot size grows over time, so a
// long-unsold auction eventually offers the whole remaining balance in a
// single lot.
type Auction struct {
	ID                   uint64
	Token                common.Address
	StartTime            uint64
	EndTime              uint64
	LotPrice             *big.Int
	InitialLotSize       *big.Int
	NumLots              uint64
	RemainingLots        uint64
	LotIncreaseIncrement *big.Int
	LotIncreasePeriod    uint64
	TotalTokensSold      *big.Int
	TotalFundsRaised     *big.Int
	Active               bool
}

// Clone produces a deep copy of the auction to protect internal references.
func (a *Auction) Clone() *Auction {
	if a == nil {
		return nil
	}
	clone := *a
	clone.LotPrice = cloneBigInt(a.LotPrice)
	clone.InitialLotSize = cloneBigInt(a.InitialLotSize)
	clone.LotIncreaseIncrement = cloneBigInt(a.LotIncreaseIncrement)
	clone.TotalTokensSold = cloneBigInt(a.TotalTokensSold)
	clone.TotalFundsRaised = cloneBigInt(a.TotalFundsRaised)
	return &clone
}

// isActive reports whether lots can still be bought at the given time.
func (a *Auction) isActive(now uint64) bool {
	if a == nil {
		return false
	}
	return a.Active && now < a.EndTime && a.RemainingLots > 0
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
