package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RewardTokenInfo describes a registered reward token: its decay parameters
// and the markets currently receiving it with their basis-point weights.
type RewardTokenInfo struct {
	Token                common.Address
	Paused               bool
	InitialTimestamp     uint64
	InitialInflationRate *big.Int
	ReductionFactor      *big.Int
	Markets              []common.Address
	Weights              []uint64
}

// Clone produces a deep copy of the info to protect internal references.
func (i *RewardTokenInfo) Clone() *RewardTokenInfo {
	if i == nil {
		return nil
	}
	clone := &RewardTokenInfo{
		Token:                i.Token,
		Paused:               i.Paused,
		InitialTimestamp:     i.InitialTimestamp,
		InitialInflationRate: copyBigInt(i.InitialInflationRate),
		ReductionFactor:      copyBigInt(i.ReductionFactor),
		Markets:              append([]common.Address(nil), i.Markets...),
		Weights:              append([]uint64(nil), i.Weights...),
	}
	return clone
}

// WeightFor returns the basis-point weight assigned to the market, zero when
// the market is not in the token's list.
func (i *RewardTokenInfo) WeightFor(market common.Address) uint64 {
	if i == nil {
		return 0
	}
	for idx, m := range i.Markets {
		if m == market {
			if idx < len(i.Weights) {
				return i.Weights[idx]
			}
			return 0
		}
	}
	return 0
}

func (i *RewardTokenInfo) hasMarket(market common.Address) bool {
	if i == nil {
		return false
	}
	for _, m := range i.Markets {
		if m == market {
			return true
		}
	}
	return false
}
