package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"perpsafety/core/events"
)

type mockState struct {
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

func newMockState() *mockState {
	return &mockState{
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

func pairKey(a, b common.Address) string {
	return a.Hex() + "/" + b.Hex()
}

func tripleKey(a, b, c common.Address) string {
	return a.Hex() + "/" + b.Hex() + "/" + c.Hex()
}

func (m *mockState) RewardTokenList() ([]common.Address, error) {
	return append([]common.Address(nil), m.tokenList...), nil
}

func (m *mockState) SetRewardTokenList(tokens []common.Address) error {
	m.tokenList = append([]common.Address(nil), tokens...)
	return nil
}

func (m *mockState) GetRewardToken(token common.Address) (*RewardTokenInfo, error) {
	info, ok := m.tokens[token]
	if !ok {
		return nil, nil
	}
	return info.Clone(), nil
}

func (m *mockState) PutRewardToken(info *RewardTokenInfo) error {
	m.tokens[info.Token] = info.Clone()
	return nil
}

func (m *mockState) DeleteRewardToken(token common.Address) error {
	delete(m.tokens, token)
	return nil
}

func (m *mockState) Accumulator(token, market common.Address) (*big.Int, error) {
	return copyBigInt(m.accumulators[pairKey(token, market)]), nil
}

func (m *mockState) SetAccumulator(token, market common.Address, value *big.Int) error {
	m.accumulators[pairKey(token, market)] = copyBigInt(value)
	return nil
}

func (m *mockState) LastUpdateTime(market common.Address) (uint64, error) {
	return m.lastUpdate[market], nil
}

func (m *mockState) SetLastUpdateTime(market common.Address, ts uint64) error {
	m.lastUpdate[market] = ts
	return nil
}

func (m *mockState) TotalLiquidity(market common.Address) (*big.Int, error) {
	return copyBigInt(m.liquidity[market]), nil
}

func (m *mockState) SetTotalLiquidity(market common.Address, total *big.Int) error {
	m.liquidity[market] = copyBigInt(total)
	return nil
}

func (m *mockState) Position(user, market common.Address) (*big.Int, error) {
	return copyBigInt(m.positions[pairKey(user, market)]), nil
}

func (m *mockState) SetPosition(user, market common.Address, amount *big.Int) error {
	m.positions[pairKey(user, market)] = copyBigInt(amount)
	return nil
}

func (m *mockState) LastSeenAccumulator(user, token, market common.Address) (*big.Int, error) {
	return copyBigInt(m.lastSeen[tripleKey(user, token, market)]), nil
}

func (m *mockState) SetLastSeenAccumulator(user, token, market common.Address, value *big.Int) error {
	m.lastSeen[tripleKey(user, token, market)] = copyBigInt(value)
	return nil
}

func (m *mockState) AccruedRewards(user, token common.Address) (*big.Int, error) {
	return copyBigInt(m.accrued[pairKey(user, token)]), nil
}

func (m *mockState) SetAccruedRewards(user, token common.Address, amount *big.Int) error {
	m.accrued[pairKey(user, token)] = copyBigInt(amount)
	return nil
}

func (m *mockState) TotalUnclaimed(token common.Address) (*big.Int, error) {
	return copyBigInt(m.unclaimed[token]), nil
}

func (m *mockState) SetTotalUnclaimed(token common.Address, amount *big.Int) error {
	m.unclaimed[token] = copyBigInt(amount)
	return nil
}

func (m *mockState) MultiplierStart(user, market common.Address) (uint64, error) {
	return m.multiplierStart[pairKey(user, market)], nil
}

func (m *mockState) SetMultiplierStart(user, market common.Address, ts uint64) error {
	m.multiplierStart[pairKey(user, market)] = ts
	return nil
}

func (m *mockState) WithdrawTimerStart(user, market common.Address) (uint64, bool, error) {
	ts, ok := m.withdrawStart[pairKey(user, market)]
	return ts, ok, nil
}

func (m *mockState) SetWithdrawTimerStart(user, market common.Address, ts uint64) error {
	m.withdrawStart[pairKey(user, market)] = ts
	return nil
}

func (m *mockState) ClearWithdrawTimer(user, market common.Address) error {
	delete(m.withdrawStart, pairKey(user, market))
	return nil
}

type mockMarkets struct {
	markets   []common.Address
	positions map[string]*big.Int
}

func newMockMarkets(markets ...common.Address) *mockMarkets {
	return &mockMarkets{
		markets:   markets,
		positions: make(map[string]*big.Int),
	}
}

func (m *mockMarkets) NumMarkets() int { return len(m.markets) }

func (m *mockMarkets) MarketAddress(i int) (common.Address, error) {
	if i < 0 || i >= len(m.markets) {
		return common.Address{}, ErrZeroAddress
	}
	return m.markets[i], nil
}

func (m *mockMarkets) CurrentPosition(user, market common.Address) (*big.Int, error) {
	return copyBigInt(m.positions[pairKey(user, market)]), nil
}

func (m *mockMarkets) setPosition(user, market common.Address, amount *big.Int) {
	m.positions[pairKey(user, market)] = copyBigInt(amount)
}

type mockReserve struct {
	balances  map[common.Address]*big.Int
	transfers []struct {
		token, to common.Address
		amount    *big.Int
	}
}

func newMockReserve() *mockReserve {
	return &mockReserve{balances: make(map[common.Address]*big.Int)}
}

func (m *mockReserve) fund(token common.Address, amount *big.Int) {
	bal := copyBigInt(m.balances[token])
	m.balances[token] = bal.Add(bal, amount)
}

func (m *mockReserve) Balance(token common.Address) (*big.Int, error) {
	return copyBigInt(m.balances[token]), nil
}

func (m *mockReserve) Withdraw(token, to common.Address, amount *big.Int) (*big.Int, error) {
	bal := copyBigInt(m.balances[token])
	moved := minBigInt(amount, bal)
	m.balances[token] = bal.Sub(bal, moved)
	m.transfers = append(m.transfers, struct {
		token, to common.Address
		amount    *big.Int
	}{token, to, copyBigInt(moved)})
	return moved, nil
}

type captureEmitter struct {
	events []events.Event
}

func (c *captureEmitter) Emit(evt events.Event) {
	c.events = append(c.events, evt)
}

func (c *captureEmitter) countType(eventType string) int {
	n := 0
	for _, evt := range c.events {
		if evt.EventType() == eventType {
			n++
		}
	}
	return n
}
