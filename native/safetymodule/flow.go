package safetymodule

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// UpdateStakingPosition is the hook staking contracts call on every stake,
// unstake, or transfer. The caller must be the registered token itself; the
// new position is forwarded by value to the distributor, which settles the
// user against its own previous snapshot.
func (m *Module) UpdateStakingPosition(caller, user common.Address, newPosition *big.Int) error {
	if err := m.guard(); err != nil {
		return err
	}
	if _, ok := m.index[caller]; !ok {
		return ErrTokenNotRegistered
	}
	if user == (common.Address{}) {
		return ErrZeroAddress
	}
	if m.distributor == nil {
		return errNilDistributor
	}
	return m.distributor.UpdatePosition(m.moduleAddress, caller, user, newPosition)
}

// SlashAndStartAuction pulls collateral out of a staked token and opens a
// lot auction over it. Governor only. The slashed amount is moved to the
// auction escrow before the auction is started, and the auction sells the
// token's underlying asset. Returns the auction identifier.
func (m *Module) SlashAndStartAuction(caller, token common.Address, amount *big.Int, params AuctionParams) (uint64, error) {
	if err := m.guard(); err != nil {
		return 0, err
	}
	if caller != m.governor {
		return 0, ErrUnauthorized
	}
	impl, ok := m.impls[token]
	if !ok {
		return 0, ErrTokenNotRegistered
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if m.auctions == nil {
		return 0, errNilAuctions
	}
	slashed, err := impl.Slash(m.auctionEscrow, amount)
	if err != nil {
		return 0, err
	}
	id, err := m.auctions.StartAuction(m.moduleAddress, impl.Underlying(),
		params.LotPrice, params.InitialLotSize, params.NumLots,
		params.LotIncreaseIncrement, params.LotIncreasePeriod, params.TimeLimit)
	if err != nil {
		return 0, err
	}
	m.pendingSettlements[id] = token
	m.emit(newSlashedEvent(token, slashed, id))
	return id, nil
}

// AuctionEnded is the settlement callback invoked by the auction engine when
// an auction sells out or is completed past its deadline. Unsold collateral
// is returned to the staked token and the slashing episode is settled,
// unblocking stake and unstake on the token.
func (m *Module) AuctionEnded(id uint64, unsoldBalance, fundsRaised *big.Int) error {
	token, ok := m.pendingSettlements[id]
	if !ok {
		return ErrNoPendingSettlement
	}
	return m.settle(id, token, unsoldBalance, fundsRaised)
}

// SettleTerminatedAuction finishes the settlement of an auction that
// governance terminated early. Termination returns collateral to the escrow
// without notifying anyone, so this explicit step exists to return it to the
// token and close the slashing episode. Governor only.
func (m *Module) SettleTerminatedAuction(caller common.Address, id uint64, unsoldBalance, fundsRaised *big.Int) error {
	if caller != m.governor {
		return ErrUnauthorized
	}
	token, ok := m.pendingSettlements[id]
	if !ok {
		return ErrNoPendingSettlement
	}
	return m.settle(id, token, unsoldBalance, fundsRaised)
}

func (m *Module) settle(id uint64, token common.Address, unsoldBalance, fundsRaised *big.Int) error {
	impl, ok := m.impls[token]
	if !ok {
		return ErrTokenNotRegistered
	}
	if unsoldBalance != nil && unsoldBalance.Sign() > 0 {
		if err := impl.ReturnFunds(m.auctionEscrow, unsoldBalance); err != nil {
			return err
		}
	}
	if err := impl.SettleSlashing(); err != nil {
		return err
	}
	delete(m.pendingSettlements, id)
	m.emit(newSettledEvent(token, id, unsoldBalance, fundsRaised))
	return nil
}

// PendingSettlement reports the staked token awaiting settlement for an
// auction, if any.
func (m *Module) PendingSettlement(id uint64) (common.Address, bool) {
	token, ok := m.pendingSettlements[id]
	return token, ok
}
