package safetymodule

import (
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"perpsafety/core/events"
	"perpsafety/core/types"
	nativecommon "perpsafety/native/common"
)

const moduleName = "safetymodule"

var (
	errNilDistributor = errors.New("safety module: distributor not configured")
	errNilAuctions    = errors.New("safety module: auction house not configured")
)

var (
	ErrUnauthorized           = errors.New("safetymodule: unauthorized")
	ErrZeroAddress            = errors.New("safetymodule: zero address")
	ErrInvalidAmount          = errors.New("safetymodule: amount must be positive")
	ErrTokenAlreadyRegistered = errors.New("safetymodule: staked token already registered")
	ErrTokenNotRegistered     = errors.New("safetymodule: staked token not registered")
	ErrNoPendingSettlement    = errors.New("safetymodule: no pending settlement for auction")
	ErrCooldownNotStarted     = errors.New("safetymodule: cooldown not started")
	ErrCooldownNotElapsed     = errors.New("safetymodule: cooldown period not elapsed")
	ErrUnstakeWindowClosed    = errors.New("safetymodule: unstake window closed")
)

// StakedToken is the collaborator staking contract: the source of live
// positions and the target of slashing. Its transfer semantics are not
// reimplemented here.
type StakedToken interface {
	Underlying() common.Address
	BalanceOf(user common.Address) (*big.Int, error)
	TotalSupply() (*big.Int, error)
	Slash(destination common.Address, amount *big.Int) (*big.Int, error)
	ReturnFunds(from common.Address, amount *big.Int) error
	SettleSlashing() error
}

// Distributor receives position-change notifications. The old position is
// the distributor's own ledger snapshot; the new position travels by value,
// so there is no back-reference from the distributor into the token.
type Distributor interface {
	UpdatePosition(caller, market, user common.Address, newPosition *big.Int) error
}

// AuctionHouse starts liquidation auctions over slashed collateral.
type AuctionHouse interface {
	StartAuction(caller, token common.Address, lotPrice, initialLotSize *big.Int, numLots uint64, lotIncreaseIncrement *big.Int, lotIncreasePeriod, timeLimit uint64) (uint64, error)
}

// AuctionParams bundles the lot configuration of a slashing auction.
type AuctionParams struct {
	LotPrice             *big.Int
	InitialLotSize       *big.Int
	NumLots              uint64
	LotIncreaseIncrement *big.Int
	LotIncreasePeriod    uint64
	TimeLimit            uint64
}

// Module coordinates the staked token registry, the slashing flow into the
// auction, and the cooldown policy. It also acts as the pause authority the
// distributor and auction engines consult: paused is the OR of its own flag
// and the controller collaborator's.
type Module struct {
	governor      common.Address
	moduleAddress common.Address
	auctionEscrow common.Address
	emitter       events.Emitter
	nowFn         func() uint64

	paused           bool
	controllerPauses nativecommon.PauseView

	tokens []common.Address
	index  map[common.Address]int
	impls  map[common.Address]StakedToken

	distributor Distributor
	auctions    AuctionHouse

	cooldownSeconds uint64
	unstakeWindow   uint64
	cooldowns       map[common.Address]uint64

	pendingSettlements map[uint64]common.Address
}

// NewModule constructs the safety module. The module address is the identity
// it presents to the auction house; the auction escrow is where slashed
// collateral lands.
func NewModule(governor, moduleAddress, auctionEscrow common.Address, cooldownSeconds, unstakeWindow uint64) (*Module, error) {
	if governor == (common.Address{}) || moduleAddress == (common.Address{}) || auctionEscrow == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	return &Module{
		governor:           governor,
		moduleAddress:      moduleAddress,
		auctionEscrow:      auctionEscrow,
		emitter:            events.NoopEmitter{},
		nowFn:              func() uint64 { return uint64(time.Now().Unix()) },
		index:              make(map[common.Address]int),
		impls:              make(map[common.Address]StakedToken),
		cooldowns:          make(map[common.Address]uint64),
		pendingSettlements: make(map[uint64]common.Address),
		cooldownSeconds:    cooldownSeconds,
		unstakeWindow:      unstakeWindow,
	}, nil
}

// Address returns the identity the module presents to collaborators.
func (m *Module) Address() common.Address { return m.moduleAddress }

// SetDistributor wires the reward distributor notified of position changes.
func (m *Module) SetDistributor(d Distributor) { m.distributor = d }

// SetAuctionHouse wires the auction engine used for slashing liquidations.
func (m *Module) SetAuctionHouse(a AuctionHouse) { m.auctions = a }

// SetControllerPauses wires the collaborator pause view OR-ed with the
// module's own flag.
func (m *Module) SetControllerPauses(p nativecommon.PauseView) { m.controllerPauses = p }

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (m *Module) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		m.emitter = events.NoopEmitter{}
		return
	}
	m.emitter = emitter
}

// SetNowFunc overrides the time source, primarily for deterministic tests.
func (m *Module) SetNowFunc(now func() uint64) {
	if now == nil {
		m.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	m.nowFn = now
}

func (m *Module) now() uint64 {
	if m == nil || m.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	return m.nowFn()
}

func (m *Module) emit(event *types.Event) {
	if m == nil || m.emitter == nil || event == nil {
		return
	}
	m.emitter.Emit(moduleEvent{evt: event})
}

// SetPaused flips the module's own pause flag. Governor only.
func (m *Module) SetPaused(caller common.Address, paused bool) error {
	if caller != m.governor {
		return ErrUnauthorized
	}
	m.paused = paused
	m.emit(newPausedEvent(paused))
	return nil
}

// IsPaused implements the PauseView interface handed to the distributor and
// auction engines: the module counts as paused when either its own flag or
// the controller's is set.
func (m *Module) IsPaused(module string) bool {
	if m == nil {
		return false
	}
	if m.paused {
		return true
	}
	return m.controllerPauses != nil && m.controllerPauses.IsPaused(module)
}

func (m *Module) guard() error {
	if m.IsPaused(moduleName) {
		return nativecommon.ErrModulePaused
	}
	return nil
}
