package rewards

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"perpsafety/core/events"
	"perpsafety/core/types"
	nativecommon "perpsafety/native/common"
)

const moduleName = "rewards"

// engineState is the persistence layer backing the distributor. Keys mirror
// the on-module storage layout: per-token info and the ordered token list,
// per (token, market) accumulators, per market liquidity and update times,
// and the per-user ledgers.
type engineState interface {
	RewardTokenList() ([]common.Address, error)
	SetRewardTokenList(tokens []common.Address) error
	GetRewardToken(token common.Address) (*RewardTokenInfo, error)
	PutRewardToken(info *RewardTokenInfo) error
	DeleteRewardToken(token common.Address) error

	Accumulator(token, market common.Address) (*big.Int, error)
	SetAccumulator(token, market common.Address, value *big.Int) error
	LastUpdateTime(market common.Address) (uint64, error)
	SetLastUpdateTime(market common.Address, ts uint64) error
	TotalLiquidity(market common.Address) (*big.Int, error)
	SetTotalLiquidity(market common.Address, total *big.Int) error

	Position(user, market common.Address) (*big.Int, error)
	SetPosition(user, market common.Address, amount *big.Int) error
	LastSeenAccumulator(user, token, market common.Address) (*big.Int, error)
	SetLastSeenAccumulator(user, token, market common.Address, value *big.Int) error

	AccruedRewards(user, token common.Address) (*big.Int, error)
	SetAccruedRewards(user, token common.Address, amount *big.Int) error
	TotalUnclaimed(token common.Address) (*big.Int, error)
	SetTotalUnclaimed(token common.Address, amount *big.Int) error

	MultiplierStart(user, market common.Address) (uint64, error)
	SetMultiplierStart(user, market common.Address, ts uint64) error
	WithdrawTimerStart(user, market common.Address) (uint64, bool, error)
	SetWithdrawTimerStart(user, market common.Address, ts uint64) error
	ClearWithdrawTimer(user, market common.Address) error
}

// MarketSource supplies the live market set and positions the distributor
// accrues against. The perpetual clearing house and the staked token each
// provide an implementation.
type MarketSource interface {
	NumMarkets() int
	MarketAddress(i int) (common.Address, error)
	CurrentPosition(user, market common.Address) (*big.Int, error)
}

// ReserveVault is the external token holder claims are paid from. Withdraw
// is capped at the vault's balance and reports the amount actually moved.
type ReserveVault interface {
	Balance(token common.Address) (*big.Int, error)
	Withdraw(token common.Address, to common.Address, amount *big.Int) (*big.Int, error)
}

// Engine is the shared reward accrual and distribution engine. The two
// distributor variants are the same engine assembled with exactly one of the
// optional components: the staking variant carries the reward multiplier,
// the perpetual LP variant carries the early withdrawal penalty.
type Engine struct {
	state      engineState
	markets    MarketSource
	reserve    ReserveVault
	emitter    events.Emitter
	pauses     nativecommon.PauseView
	nowFn      func() uint64
	governor   common.Address
	controller common.Address

	multiplier *MultiplierParams
	penalty    *PenaltyParams
}

// NewStakeDistributor builds the staking-variant engine with a reward
// multiplier curve.
func NewStakeDistributor(governor common.Address, params MultiplierParams) (*Engine, error) {
	if governor == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	e := newEngine(governor)
	cloned := MultiplierParams{
		MaxMultiplier:  copyBigInt(params.MaxMultiplier),
		SmoothingValue: copyBigInt(params.SmoothingValue),
	}
	e.multiplier = &cloned
	return e, nil
}

// NewPerpDistributor builds the perpetual-LP-variant engine with an early
// withdrawal penalty.
func NewPerpDistributor(governor common.Address, params PenaltyParams) (*Engine, error) {
	if governor == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	e := newEngine(governor)
	e.penalty = &PenaltyParams{EarlyWithdrawalThreshold: params.EarlyWithdrawalThreshold}
	return e, nil
}

func newEngine(governor common.Address) *Engine {
	return &Engine{
		emitter:  events.NoopEmitter{},
		nowFn:    func() uint64 { return uint64(time.Now().Unix()) },
		governor: governor,
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetMarketSource wires the collaborator supplying markets and positions.
func (e *Engine) SetMarketSource(src MarketSource) { e.markets = src }

// SetReserve wires the vault claims are paid from. Governance can redirect
// the reserve at any time; unclaimed balances carry over unchanged.
func (e *Engine) SetReserve(reserve ReserveVault) { e.reserve = reserve }

// SetController registers the collaborator address allowed to push position
// updates into the ledger.
func (e *Engine) SetController(controller common.Address) { e.controller = controller }

// SetPauses wires the pause view consulted by every mutating entry point.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source, primarily for deterministic tests.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	return e.nowFn()
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(rewardEvent{evt: event})
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.markets == nil {
		return errNilMarketSource
	}
	return nil
}

func (e *Engine) loadRegistry() (*tokenRegistry, error) {
	list, err := e.state.RewardTokenList()
	if err != nil {
		return nil, err
	}
	return newTokenRegistry(list), nil
}

func (e *Engine) requireGovernor(caller common.Address) error {
	if caller != e.governor {
		return ErrUnauthorized
	}
	return nil
}

// updateMarketRewards advances the per-token reward accumulators of a market
// to the current time. Every operation that depends on an accumulator calls
// this first, in the same transaction, so stale reads are impossible. The
// function is idempotent within a single instant and the accumulators never
// decrease.
func (e *Engine) updateMarketRewards(market common.Address, now uint64) error {
	last, err := e.state.LastUpdateTime(market)
	if err != nil {
		return err
	}
	if now <= last {
		return nil
	}
	registry, err := e.loadRegistry()
	if err != nil {
		return err
	}
	if registry.size() == 0 {
		return nil
	}
	// First touch or an empty market: initialise the clock without
	// attributing rewards, otherwise liquidity arriving later would be
	// over-counted.
	if last == 0 {
		return e.state.SetLastUpdateTime(market, now)
	}
	total, err := e.state.TotalLiquidity(market)
	if err != nil {
		return err
	}
	if total == nil || total.Sign() == 0 {
		return e.state.SetLastUpdateTime(market, now)
	}

	delta := new(big.Int).SetUint64(now - last)
	for _, token := range registry.addresses() {
		info, err := e.state.GetRewardToken(token)
		if err != nil {
			return err
		}
		if info == nil || info.Paused {
			continue
		}
		weight := info.WeightFor(market)
		if weight == 0 {
			continue
		}
		rate := inflationRate(info, now)
		if rate.Sign() == 0 {
			continue
		}
		// Single product-then-divide chain, upscaled to wad before the
		// final division so small pools do not truncate to zero.
		increment := new(big.Int).Mul(rate, new(big.Int).SetUint64(weight))
		increment.Mul(increment, delta)
		increment.Mul(increment, wad)
		divisor := new(big.Int).Mul(bpsDenom, new(big.Int).SetUint64(secondsPerYear))
		divisor.Mul(divisor, total)
		increment.Quo(increment, divisor)
		if increment.Sign() <= 0 {
			continue
		}
		accumulator, err := e.state.Accumulator(token, market)
		if err != nil {
			return err
		}
		next := new(big.Int).Add(copyBigInt(accumulator), increment)
		if err := e.state.SetAccumulator(token, market, next); err != nil {
			return err
		}
	}
	return e.state.SetLastUpdateTime(market, now)
}

// flushTokenMarkets settles pending accrual for every market a token
// rewards, so parameter changes only ever affect future time.
func (e *Engine) flushTokenMarkets(info *RewardTokenInfo, now uint64) error {
	if info == nil {
		return nil
	}
	for _, market := range info.Markets {
		if err := e.updateMarketRewards(market, now); err != nil {
			return err
		}
	}
	return nil
}
