package rewards

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	testGovernor   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testController = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	testMarket1    = common.HexToAddress("0x0000000000000000000000000000000000000011")
	testMarket2    = common.HexToAddress("0x0000000000000000000000000000000000000022")
	testToken1     = common.HexToAddress("0x0000000000000000000000000000000000000101")
	testToken2     = common.HexToAddress("0x0000000000000000000000000000000000000102")
	testUser1      = common.HexToAddress("0x0000000000000000000000000000000000000901")
	testUser2      = common.HexToAddress("0x0000000000000000000000000000000000000902")
)

const testThreshold uint64 = 1000

type testClock struct {
	now uint64
}

func (c *testClock) read() uint64 { return c.now }

func wireTestEngine(t *testing.T, e *Engine, err error) (*Engine, *mockState, *mockMarkets, *mockReserve, *testClock) {
	t.Helper()
	if err != nil {
		t.Fatalf("construct engine: %v", err)
	}
	state := newMockState()
	markets := newMockMarkets(testMarket1, testMarket2)
	reserve := newMockReserve()
	clock := &testClock{now: 1000}
	e.SetState(state)
	e.SetMarketSource(markets)
	e.SetReserve(reserve)
	e.SetController(testController)
	e.SetNowFunc(clock.read)
	return e, state, markets, reserve, clock
}

func newPerpTestEngine(t *testing.T) (*Engine, *mockState, *mockMarkets, *mockReserve) {
	t.Helper()
	e, err := NewPerpDistributor(testGovernor, PenaltyParams{EarlyWithdrawalThreshold: testThreshold})
	engine, state, markets, reserve, _ := wireTestEngine(t, e, err)
	return engine, state, markets, reserve
}

func newPerpTestEngineWithClock(t *testing.T) (*Engine, *mockState, *mockMarkets, *mockReserve, *testClock) {
	t.Helper()
	e, err := NewPerpDistributor(testGovernor, PenaltyParams{EarlyWithdrawalThreshold: testThreshold})
	return wireTestEngine(t, e, err)
}

func newStakeTestEngineWithClock(t *testing.T) (*Engine, *mockState, *mockMarkets, *mockReserve, *testClock) {
	t.Helper()
	e, err := NewStakeDistributor(testGovernor, MultiplierParams{
		MaxMultiplier:  wadTimes(4),
		SmoothingValue: wadTimes(10),
	})
	return wireTestEngine(t, e, err)
}

// addConstantToken registers a token emitting a flat 1000 tokens per year
// into testMarket1.
func addConstantToken(t *testing.T, e *Engine) {
	t.Helper()
	err := e.AddRewardToken(testGovernor, testToken1, wadTimes(1000), new(big.Int).Set(wad),
		[]common.Address{testMarket1}, []uint64{10_000})
	if err != nil {
		t.Fatalf("AddRewardToken: %v", err)
	}
}

func TestAccumulatorGrowsWithTime(t *testing.T) {
	e, state, _, _, clock := newPerpTestEngineWithClock(t)
	addConstantToken(t, e)
	if err := state.SetTotalLiquidity(testMarket1, wadTimes(100)); err != nil {
		t.Fatal(err)
	}
	clock.now += secondsPerYear
	if err := e.updateMarketRewards(testMarket1, clock.now); err != nil {
		t.Fatalf("updateMarketRewards: %v", err)
	}
	acc, err := state.Accumulator(testToken1, testMarket1)
	if err != nil {
		t.Fatal(err)
	}
	// 1000 tokens over a year across 100 units of liquidity.
	if acc.Cmp(wadTimes(10)) != 0 {
		t.Fatalf("accumulator = %s, want 10e18", acc)
	}
	clock.now += secondsPerYear
	if err := e.updateMarketRewards(testMarket1, clock.now); err != nil {
		t.Fatal(err)
	}
	acc, _ = state.Accumulator(testToken1, testMarket1)
	if acc.Cmp(wadTimes(20)) != 0 {
		t.Fatalf("accumulator after two years = %s, want 20e18", acc)
	}
}

func TestAccumulatorIdempotentWithinInstant(t *testing.T) {
	e, state, _, _, clock := newPerpTestEngineWithClock(t)
	addConstantToken(t, e)
	state.SetTotalLiquidity(testMarket1, wadTimes(100))
	clock.now += secondsPerYear
	if err := e.updateMarketRewards(testMarket1, clock.now); err != nil {
		t.Fatal(err)
	}
	before, _ := state.Accumulator(testToken1, testMarket1)
	for i := 0; i < 3; i++ {
		if err := e.updateMarketRewards(testMarket1, clock.now); err != nil {
			t.Fatal(err)
		}
	}
	after, _ := state.Accumulator(testToken1, testMarket1)
	if before.Cmp(after) != 0 {
		t.Fatalf("accumulator changed on repeat update: %s -> %s", before, after)
	}
}

func TestAccumulatorIgnoresStaleTimestamps(t *testing.T) {
	e, state, _, _, clock := newPerpTestEngineWithClock(t)
	addConstantToken(t, e)
	state.SetTotalLiquidity(testMarket1, wadTimes(100))
	clock.now += secondsPerYear
	if err := e.updateMarketRewards(testMarket1, clock.now); err != nil {
		t.Fatal(err)
	}
	before, _ := state.Accumulator(testToken1, testMarket1)
	if err := e.updateMarketRewards(testMarket1, clock.now-500); err != nil {
		t.Fatal(err)
	}
	after, _ := state.Accumulator(testToken1, testMarket1)
	if before.Cmp(after) != 0 {
		t.Fatalf("stale update moved accumulator: %s -> %s", before, after)
	}
	ts, _ := state.LastUpdateTime(testMarket1)
	if ts != clock.now {
		t.Fatalf("last update time rolled back to %d", ts)
	}
}

func TestAccumulatorZeroLiquidityAdvancesClockOnly(t *testing.T) {
	e, state, _, _, clock := newPerpTestEngineWithClock(t)
	addConstantToken(t, e)
	clock.now += secondsPerYear
	if err := e.updateMarketRewards(testMarket1, clock.now); err != nil {
		t.Fatal(err)
	}
	acc, _ := state.Accumulator(testToken1, testMarket1)
	if acc.Sign() != 0 {
		t.Fatalf("empty market accrued %s", acc)
	}
	ts, _ := state.LastUpdateTime(testMarket1)
	if ts != clock.now {
		t.Fatalf("last update time = %d, want %d", ts, clock.now)
	}
}

func TestAccumulatorRespectsWeightSplit(t *testing.T) {
	e, state, _, _, clock := newPerpTestEngineWithClock(t)
	err := e.AddRewardToken(testGovernor, testToken1, wadTimes(1000), new(big.Int).Set(wad),
		[]common.Address{testMarket1, testMarket2}, []uint64{6000, 4000})
	if err != nil {
		t.Fatalf("AddRewardToken: %v", err)
	}
	state.SetTotalLiquidity(testMarket1, wadTimes(100))
	state.SetTotalLiquidity(testMarket2, wadTimes(100))
	clock.now += secondsPerYear
	if err := e.updateMarketRewards(testMarket1, clock.now); err != nil {
		t.Fatal(err)
	}
	if err := e.updateMarketRewards(testMarket2, clock.now); err != nil {
		t.Fatal(err)
	}
	acc1, _ := state.Accumulator(testToken1, testMarket1)
	acc2, _ := state.Accumulator(testToken1, testMarket2)
	if acc1.Cmp(wadTimes(6)) != 0 {
		t.Fatalf("market1 accumulator = %s, want 6e18", acc1)
	}
	if acc2.Cmp(wadTimes(4)) != 0 {
		t.Fatalf("market2 accumulator = %s, want 4e18", acc2)
	}
}

func TestPausedTokenStopsAccruing(t *testing.T) {
	e, state, _, _, clock := newPerpTestEngineWithClock(t)
	addConstantToken(t, e)
	state.SetTotalLiquidity(testMarket1, wadTimes(100))
	if err := e.SetRewardTokenPaused(testGovernor, testToken1, true); err != nil {
		t.Fatalf("SetRewardTokenPaused: %v", err)
	}
	clock.now += secondsPerYear
	if err := e.updateMarketRewards(testMarket1, clock.now); err != nil {
		t.Fatal(err)
	}
	acc, _ := state.Accumulator(testToken1, testMarket1)
	if acc.Sign() != 0 {
		t.Fatalf("paused token accrued %s", acc)
	}
	// Unpausing restarts accrual for future time only.
	if err := e.SetRewardTokenPaused(testGovernor, testToken1, false); err != nil {
		t.Fatal(err)
	}
	clock.now += secondsPerYear
	if err := e.updateMarketRewards(testMarket1, clock.now); err != nil {
		t.Fatal(err)
	}
	acc, _ = state.Accumulator(testToken1, testMarket1)
	if acc.Cmp(wadTimes(10)) != 0 {
		t.Fatalf("post-unpause accumulator = %s, want 10e18", acc)
	}
}

func TestWeightValidation(t *testing.T) {
	e, _, _, _ := newPerpTestEngine(t)
	rate := wadTimes(1000)
	factor := new(big.Int).Set(wad)
	cases := []struct {
		name    string
		markets []common.Address
		weights []uint64
		want    error
	}{
		{"empty", nil, nil, ErrNoMarkets},
		{"length mismatch", []common.Address{testMarket1}, []uint64{5000, 5000}, ErrWeightLengthMismatch},
		{"above max", []common.Address{testMarket1, testMarket2}, []uint64{10_001, 0}, ErrWeightAboveMax},
		{"sum below", []common.Address{testMarket1, testMarket2}, []uint64{5000, 4000}, ErrWeightSumMismatch},
		{"sum above", []common.Address{testMarket1, testMarket2}, []uint64{5000, 5001}, ErrWeightSumMismatch},
		{"zero market", []common.Address{{}}, []uint64{10_000}, ErrZeroAddress},
	}
	for _, tc := range cases {
		if err := e.AddRewardToken(testGovernor, testToken1, rate, factor, tc.markets, tc.weights); err != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestUpdateRewardWeightsReplacesMarkets(t *testing.T) {
	e, state, _, _, clock := newPerpTestEngineWithClock(t)
	addConstantToken(t, e)
	state.SetTotalLiquidity(testMarket1, wadTimes(100))
	clock.now += secondsPerYear
	emitter := &captureEmitter{}
	e.SetEmitter(emitter)
	err := e.UpdateRewardWeights(testGovernor, testToken1,
		[]common.Address{testMarket2}, []uint64{10_000})
	if err != nil {
		t.Fatalf("UpdateRewardWeights: %v", err)
	}
	// The outgoing market keeps its historical accrual.
	acc, _ := state.Accumulator(testToken1, testMarket1)
	if acc.Cmp(wadTimes(10)) != 0 {
		t.Fatalf("historical accumulator = %s, want 10e18", acc)
	}
	info, _ := state.GetRewardToken(testToken1)
	if len(info.Markets) != 1 || info.Markets[0] != testMarket2 {
		t.Fatalf("unexpected market set: %v", info.Markets)
	}
	if emitter.countType(EventTypeMarketRemoved) != 1 {
		t.Fatal("expected one market removal event")
	}
	if emitter.countType(EventTypeWeightUpdated) != 1 {
		t.Fatal("expected one weight update event")
	}
}

func TestGovernorGates(t *testing.T) {
	e, _, _, _ := newPerpTestEngine(t)
	addConstantToken(t, e)
	outsider := testUser1
	if err := e.AddRewardToken(outsider, testToken2, wadTimes(1), wadTimes(1), []common.Address{testMarket1}, []uint64{10_000}); err != ErrUnauthorized {
		t.Fatalf("AddRewardToken: got %v, want ErrUnauthorized", err)
	}
	if _, err := e.RemoveRewardToken(outsider, testToken1); err != ErrUnauthorized {
		t.Fatalf("RemoveRewardToken: got %v, want ErrUnauthorized", err)
	}
	if err := e.UpdateInitialInflationRate(outsider, testToken1, wadTimes(1)); err != ErrUnauthorized {
		t.Fatalf("UpdateInitialInflationRate: got %v, want ErrUnauthorized", err)
	}
	if err := e.UpdateReductionFactor(outsider, testToken1, wadTimes(2)); err != ErrUnauthorized {
		t.Fatalf("UpdateReductionFactor: got %v, want ErrUnauthorized", err)
	}
	if err := e.SetRewardTokenPaused(outsider, testToken1, true); err != ErrUnauthorized {
		t.Fatalf("SetRewardTokenPaused: got %v, want ErrUnauthorized", err)
	}
	if err := e.UpdateRewardWeights(outsider, testToken1, []common.Address{testMarket1}, []uint64{10_000}); err != ErrUnauthorized {
		t.Fatalf("UpdateRewardWeights: got %v, want ErrUnauthorized", err)
	}
}

func TestTokenRegistryBounds(t *testing.T) {
	e, _, _, _ := newPerpTestEngine(t)
	addConstantToken(t, e)
	if err := e.AddRewardToken(testGovernor, testToken1, wadTimes(1), wadTimes(1), []common.Address{testMarket1}, []uint64{10_000}); err != ErrTokenAlreadyRegistered {
		t.Fatalf("duplicate: got %v", err)
	}
	for i := 1; i < MaxRewardTokens; i++ {
		token := common.BigToAddress(big.NewInt(int64(0x200 + i)))
		if err := e.AddRewardToken(testGovernor, token, wadTimes(1), wadTimes(1), []common.Address{testMarket1}, []uint64{10_000}); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}
	overflow := common.BigToAddress(big.NewInt(0x999))
	if err := e.AddRewardToken(testGovernor, overflow, wadTimes(1), wadTimes(1), []common.Address{testMarket1}, []uint64{10_000}); err != ErrTooManyRewardTokens {
		t.Fatalf("overflow: got %v", err)
	}
}

func TestRegistrationBoundsChecks(t *testing.T) {
	e, _, _, _ := newPerpTestEngine(t)
	markets := []common.Address{testMarket1}
	weights := []uint64{10_000}
	tooFast := new(big.Int).Add(MaxInflationRate, big.NewInt(1))
	if err := e.AddRewardToken(testGovernor, testToken1, tooFast, wadTimes(1), markets, weights); err != ErrAboveMaxInflationRate {
		t.Fatalf("rate bound: got %v", err)
	}
	tooLow := new(big.Int).Sub(MinReductionFactor, big.NewInt(1))
	if err := e.AddRewardToken(testGovernor, testToken1, wadTimes(1), tooLow, markets, weights); err != ErrBelowMinReductionFactor {
		t.Fatalf("factor bound: got %v", err)
	}
}
