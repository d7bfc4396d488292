package rewards

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// MemoryState is a self-contained state backend for the distributor engine,
// used by services and tooling that run the engine outside a node's state
// trie. All methods are safe for concurrent use.
type MemoryState struct {
	mu sync.Mutex

	tokenList []common.Address
	tokens    map[common.Address]*RewardTokenInfo

	accumulators map[string]*big.Int
	lastUpdate   map[common.Address]uint64
	liquidity    map[common.Address]*big.Int

	positions map[string]*big.Int
	lastSeen  map[string]*big.Int

	accrued   map[string]*big.Int
	unclaimed map[common.Address]*big.Int

	multiplierStart map[string]uint64
	withdrawStart   map[string]uint64
}

// NewMemoryState returns an empty in-memory state backend.
func NewMemoryState() *MemoryState {
	return &MemoryState{
		tokens:          make(map[common.Address]*RewardTokenInfo),
		accumulators:    make(map[string]*big.Int),
		lastUpdate:      make(map[common.Address]uint64),
		liquidity:       make(map[common.Address]*big.Int),
		positions:       make(map[string]*big.Int),
		lastSeen:        make(map[string]*big.Int),
		accrued:         make(map[string]*big.Int),
		unclaimed:       make(map[common.Address]*big.Int),
		multiplierStart: make(map[string]uint64),
		withdrawStart:   make(map[string]uint64),
	}
}

func memPairKey(a, b common.Address) string {
	return a.Hex() + "/" + b.Hex()
}

func memTripleKey(a, b, c common.Address) string {
	return a.Hex() + "/" + b.Hex() + "/" + c.Hex()
}

func (m *MemoryState) RewardTokenList() ([]common.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]common.Address(nil), m.tokenList...), nil
}

func (m *MemoryState) SetRewardTokenList(tokens []common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenList = append([]common.Address(nil), tokens...)
	return nil
}

func (m *MemoryState) GetRewardToken(token common.Address) (*RewardTokenInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.tokens[token]
	if !ok {
		return nil, nil
	}
	return info.Clone(), nil
}

func (m *MemoryState) PutRewardToken(info *RewardTokenInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[info.Token] = info.Clone()
	return nil
}

func (m *MemoryState) DeleteRewardToken(token common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (m *MemoryState) Accumulator(token, market common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyBigInt(m.accumulators[memPairKey(token, market)]), nil
}

func (m *MemoryState) SetAccumulator(token, market common.Address, value *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accumulators[memPairKey(token, market)] = copyBigInt(value)
	return nil
}

func (m *MemoryState) LastUpdateTime(market common.Address) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUpdate[market], nil
}

func (m *MemoryState) SetLastUpdateTime(market common.Address, ts uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUpdate[market] = ts
	return nil
}

func (m *MemoryState) TotalLiquidity(market common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyBigInt(m.liquidity[market]), nil
}

func (m *MemoryState) SetTotalLiquidity(market common.Address, total *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liquidity[market] = copyBigInt(total)
	return nil
}

func (m *MemoryState) Position(user, market common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyBigInt(m.positions[memPairKey(user, market)]), nil
}

func (m *MemoryState) SetPosition(user, market common.Address, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[memPairKey(user, market)] = copyBigInt(amount)
	return nil
}

func (m *MemoryState) LastSeenAccumulator(user, token, market common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyBigInt(m.lastSeen[memTripleKey(user, token, market)]), nil
}

func (m *MemoryState) SetLastSeenAccumulator(user, token, market common.Address, value *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen[memTripleKey(user, token, market)] = copyBigInt(value)
	return nil
}

func (m *MemoryState) AccruedRewards(user, token common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyBigInt(m.accrued[memPairKey(user, token)]), nil
}

func (m *MemoryState) SetAccruedRewards(user, token common.Address, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accrued[memPairKey(user, token)] = copyBigInt(amount)
	return nil
}

func (m *MemoryState) TotalUnclaimed(token common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyBigInt(m.unclaimed[token]), nil
}

func (m *MemoryState) SetTotalUnclaimed(token common.Address, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unclaimed[token] = copyBigInt(amount)
	return nil
}

func (m *MemoryState) MultiplierStart(user, market common.Address) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.multiplierStart[memPairKey(user, market)], nil
}

func (m *MemoryState) SetMultiplierStart(user, market common.Address, ts uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.multiplierStart[memPairKey(user, market)] = ts
	return nil
}

func (m *MemoryState) WithdrawTimerStart(user, market common.Address) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.withdrawStart[memPairKey(user, market)]
	return ts, ok, nil
}

func (m *MemoryState) SetWithdrawTimerStart(user, market common.Address, ts uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.withdrawStart[memPairKey(user, market)] = ts
	return nil
}

func (m *MemoryState) ClearWithdrawTimer(user, market common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.withdrawStart, memPairKey(user, market))
	return nil
}
