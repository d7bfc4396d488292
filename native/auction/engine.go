package auction

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"perpsafety/core/events"
	"perpsafety/core/types"
	nativecommon "perpsafety/native/common"
	"perpsafety/observability"
)

const moduleName = "auction"

// auctionState is the persistence layer for auction records.
type auctionState interface {
	NextAuctionID() (uint64, error)
	GetAuction(id uint64) (*Auction, error)
	PutAuction(a *Auction) error
}

// TokenLedger moves token balances between accounts. The auction escrows the
// slashed collateral under its own module account and pulls lot payments
// from buyers.
type TokenLedger interface {
	BalanceOf(token, account common.Address) (*big.Int, error)
	Transfer(token, from, to common.Address, amount *big.Int) error
}

// SettlementHook is notified by the collaborator side once an auction ends
// naturally, carrying the unsold balance returned to it. Early termination
// deliberately skips this notification.
type SettlementHook interface {
	AuctionEnded(id uint64, unsoldBalance, fundsRaised *big.Int) error
}

// Engine runs the lot-based liquidation auctions for slashed collateral.
type Engine struct {
	state      auctionState
	tokens     TokenLedger
	settlement SettlementHook
	emitter    events.Emitter
	pauses     nativecommon.PauseView
	nowFn      func() uint64

	governor      common.Address
	safetyModule  common.Address
	paymentToken  common.Address
	moduleAddress common.Address
}

// NewEngine constructs an auction engine. The safety module is the only
// caller allowed to start auctions and the receiver of unsold balances; the
// module address escrows auctioned tokens and raised funds.
func NewEngine(governor, safetyModule, paymentToken, moduleAddress common.Address) *Engine {
	return &Engine{
		emitter:       events.NoopEmitter{},
		nowFn:         func() uint64 { return uint64(time.Now().Unix()) },
		governor:      governor,
		safetyModule:  safetyModule,
		paymentToken:  paymentToken,
		moduleAddress: moduleAddress,
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state auctionState) { e.state = state }

// SetTokenLedger wires the balance mover used for payments and payouts.
func (e *Engine) SetTokenLedger(ledger TokenLedger) { e.tokens = ledger }

// SetSettlementHook wires the collaborator callback run on natural
// completion.
func (e *Engine) SetSettlementHook(hook SettlementHook) { e.settlement = hook }

// SetSafetyModule updates the collaborator allowed to start auctions.
func (e *Engine) SetSafetyModule(addr common.Address) { e.safetyModule = addr }

// SetPauses wires the pause view consulted by mutating entry points.
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
	e.emitter.Emit(auctionEvent{evt: event})
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.tokens == nil {
		return errNilTokenLedger
	}
	return nil
}

func (e *Engine) loadAuction(id uint64) (*Auction, error) {
	a, err := e.state.GetAuction(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAuctionNotFound
	}
	return a, nil
}

// StartAuction opens a new auction over a slashed token balance. Only the
// safety module collaborator may call it; every numeric parameter must be
// non-zero and the escrowed balance must cover the initial lot commitment.
func (e *Engine) StartAuction(caller, token common.Address, lotPrice, initialLotSize *big.Int, numLots uint64, lotIncreaseIncrement *big.Int, lotIncreasePeriod, timeLimit uint64) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if caller != e.safetyModule {
		return 0, ErrUnauthorized
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return 0, err
	}
	if token == (common.Address{}) {
		return 0, ErrInvalidParameter
	}
	if lotPrice == nil || lotPrice.Sign() <= 0 ||
		initialLotSize == nil || initialLotSize.Sign() <= 0 ||
		lotIncreaseIncrement == nil || lotIncreaseIncrement.Sign() <= 0 {
		return 0, ErrInvalidParameter
	}
	if numLots == 0 || lotIncreasePeriod == 0 || timeLimit == 0 {
		return 0, ErrInvalidParameter
	}
	balance, err := e.tokens.BalanceOf(token, e.moduleAddress)
	if err != nil {
		return 0, err
	}
	commitment := new(big.Int).Mul(initialLotSize, new(big.Int).SetUint64(numLots))
	if balance == nil || balance.Cmp(commitment) < 0 {
		return 0, ErrInsufficientCollateral
	}
	id, err := e.state.NextAuctionID()
	if err != nil {
		return 0, err
	}
	now := e.now()
	a := &Auction{
		ID:                   id,
		Token:                token,
		StartTime:            now,
		EndTime:              now + timeLimit,
		LotPrice:             cloneBigInt(lotPrice),
		InitialLotSize:       cloneBigInt(initialLotSize),
		NumLots:              numLots,
		RemainingLots:        numLots,
		LotIncreaseIncrement: cloneBigInt(lotIncreaseIncrement),
		LotIncreasePeriod:    lotIncreasePeriod,
		TotalTokensSold:      big.NewInt(0),
		TotalFundsRaised:     big.NewInt(0),
		Active:               true,
	}
	if err := e.state.PutAuction(a); err != nil {
		return 0, err
	}
	e.emit(newStartedEvent(a))
	observability.Auctions().RecordStarted()
	return id, nil
}

// CurrentLotSize returns the amount of tokens one lot buys right now: zero
// once the auction has ended, otherwise the initial size plus one increment
// per full elapsed period, clamped so the promised total never exceeds the
// escrowed balance.
func (e *Engine) CurrentLotSize(id uint64) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	a, err := e.loadAuction(id)
	if err != nil {
		return nil, err
	}
	return e.currentLotSize(a, e.now())
}

func (e *Engine) currentLotSize(a *Auction, now uint64) (*big.Int, error) {
	if !a.isActive(now) {
		return big.NewInt(0), nil
	}
	periods := (now - a.StartTime) / a.LotIncreasePeriod
	lotSize := new(big.Int).SetUint64(periods)
	lotSize.Mul(lotSize, a.LotIncreaseIncrement)
	lotSize.Add(lotSize, a.InitialLotSize)

	balance, err := e.tokens.BalanceOf(a.Token, e.moduleAddress)
	if err != nil {
		return nil, err
	}
	remaining := new(big.Int).SetUint64(a.RemainingLots)
	promised := new(big.Int).Mul(lotSize, remaining)
	if promised.Cmp(cloneBigInt(balance)) > 0 {
		lotSize = new(big.Int).Quo(cloneBigInt(balance), remaining)
	}
	return lotSize, nil
}

// BuyLots sells n lots to the buyer at the current lot size. State is fully
// settled before any token movement; selling the final lot completes the
// auction immediately.
func (e *Engine) BuyLots(id uint64, buyer common.Address, n uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if buyer == (common.Address{}) {
		return ErrInvalidParameter
	}
	a, err := e.loadAuction(id)
	if err != nil {
		return err
	}
	now := e.now()
	if !a.isActive(now) {
		return ErrAuctionInactive
	}
	if n == 0 || n > a.RemainingLots {
		return ErrInvalidLotCount
	}
	// Lot size is evaluated before decrementing so the purchase and the
	// emitted event agree.
	lotSize, err := e.currentLotSize(a, now)
	if err != nil {
		return err
	}
	lots := new(big.Int).SetUint64(n)
	payment := new(big.Int).Mul(lots, a.LotPrice)
	purchase := new(big.Int).Mul(lots, lotSize)

	a.RemainingLots -= n
	a.TotalTokensSold = new(big.Int).Add(a.TotalTokensSold, purchase)
	a.TotalFundsRaised = new(big.Int).Add(a.TotalFundsRaised, payment)
	soldOut := a.RemainingLots == 0
	if soldOut {
		a.Active = false
		a.EndTime = now
	}
	if err := e.state.PutAuction(a); err != nil {
		return err
	}
	if err := e.tokens.Transfer(e.paymentToken, buyer, e.moduleAddress, payment); err != nil {
		return err
	}
	if purchase.Sign() > 0 {
		if err := e.tokens.Transfer(a.Token, e.moduleAddress, buyer, purchase); err != nil {
			return err
		}
	}
	e.emit(newLotsBoughtEvent(a, buyer, n, lotSize, payment))
	observability.Auctions().RecordLotsSold(n)
	if soldOut {
		return e.settle(a, true)
	}
	return nil
}

// CompleteAuction finalises an auction that reached its natural expiry. Any
// caller may run it; the unsold balance goes back to the safety module and
// the settlement hook is notified.
func (e *Engine) CompleteAuction(id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	a, err := e.loadAuction(id)
	if err != nil {
		return err
	}
	if !a.Active {
		return ErrAuctionInactive
	}
	now := e.now()
	if now < a.EndTime {
		return ErrAuctionStillActive
	}
	a.Active = false
	a.EndTime = now
	if err := e.state.PutAuction(a); err != nil {
		return err
	}
	return e.settle(a, true)
}

// TerminateAuction unwinds a still-active auction early. Governance only.
// The unsold balance returns to the safety module but the settlement hook
// is deliberately not notified: settlement of an emergency unwind is a
// separate governance step.
func (e *Engine) TerminateAuction(caller common.Address, id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if caller != e.governor {
		return ErrUnauthorized
	}
	a, err := e.loadAuction(id)
	if err != nil {
		return err
	}
	if !a.isActive(e.now()) {
		return ErrAuctionInactive
	}
	a.Active = false
	a.EndTime = e.now()
	if err := e.state.PutAuction(a); err != nil {
		return err
	}
	unsold, err := e.returnUnsold(a)
	if err != nil {
		return err
	}
	e.emit(newTerminatedEvent(a, unsold))
	observability.Auctions().RecordTerminated()
	return nil
}

// WithdrawRaisedFunds moves accumulated lot payments out of the module
// escrow. Governance only.
func (e *Engine) WithdrawRaisedFunds(caller, to common.Address, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if caller != e.governor {
		return ErrUnauthorized
	}
	if to == (common.Address{}) || amount == nil || amount.Sign() <= 0 {
		return ErrInvalidParameter
	}
	if err := e.tokens.Transfer(e.paymentToken, e.moduleAddress, to, amount); err != nil {
		return err
	}
	e.emit(newFundsWithdrawnEvent(to, amount))
	return nil
}

func (e *Engine) returnUnsold(a *Auction) (*big.Int, error) {
	unsold, err := e.tokens.BalanceOf(a.Token, e.moduleAddress)
	if err != nil {
		return nil, err
	}
	unsold = cloneBigInt(unsold)
	if unsold.Sign() > 0 {
		if err := e.tokens.Transfer(a.Token, e.moduleAddress, e.safetyModule, unsold); err != nil {
			return nil, err
		}
	}
	return unsold, nil
}

func (e *Engine) settle(a *Auction, notify bool) error {
	unsold, err := e.returnUnsold(a)
	if err != nil {
		return err
	}
	e.emit(newCompletedEvent(a, unsold))
	observability.Auctions().RecordCompleted()
	if notify && e.settlement != nil {
		return e.settlement.AuctionEnded(a.ID, unsold, cloneBigInt(a.TotalFundsRaised))
	}
	return nil
}
