// Package reserve implements the ecosystem reserve: an external token holder
// reward distributions are paid from. Withdrawals by approved spenders are
// capped at the held balance, which is what lets claims make partial
// progress during a shortfall.
package reserve

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnauthorized  = errors.New("reserve: unauthorized")
	ErrZeroAddress   = errors.New("reserve: zero address")
	ErrInvalidAmount = errors.New("reserve: amount must be positive")
)

// Vault holds per-token balances and an approved-spender set. The governor
// funds the vault, approves distributor spenders, and can sweep balances
// when rotating to a new reserve.
type Vault struct {
	governor common.Address
	balances map[common.Address]*big.Int
	approved map[common.Address]bool
}

// NewVault constructs an empty vault owned by the governor.
func NewVault(governor common.Address) (*Vault, error) {
	if governor == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	return &Vault{
		governor: governor,
		balances: make(map[common.Address]*big.Int),
		approved: make(map[common.Address]bool),
	}, nil
}

// Approve grants a spender withdrawal rights. Governor only.
func (v *Vault) Approve(caller, spender common.Address) error {
	if caller != v.governor {
		return ErrUnauthorized
	}
	if spender == (common.Address{}) {
		return ErrZeroAddress
	}
	v.approved[spender] = true
	return nil
}

// Revoke removes a spender's withdrawal rights. Governor only.
func (v *Vault) Revoke(caller, spender common.Address) error {
	if caller != v.governor {
		return ErrUnauthorized
	}
	delete(v.approved, spender)
	return nil
}

// Fund credits the vault with reward tokens.
func (v *Vault) Fund(token common.Address, amount *big.Int) error {
	if token == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	current := v.balances[token]
	if current == nil {
		current = big.NewInt(0)
	}
	v.balances[token] = new(big.Int).Add(current, amount)
	return nil
}

// Balance returns the held balance of a token.
func (v *Vault) Balance(token common.Address) (*big.Int, error) {
	current := v.balances[token]
	if current == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(current), nil
}

// Withdraw moves up to amount of a token to the recipient, capped at the
// held balance. The amount actually moved is returned; zero is not an
// error, so callers can treat a dry vault as partial progress.
func (v *Vault) Withdraw(token common.Address, to common.Address, amount *big.Int) (*big.Int, error) {
	if to == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	current := v.balances[token]
	if current == nil {
		current = big.NewInt(0)
	}
	moved := new(big.Int).Set(amount)
	if moved.Cmp(current) > 0 {
		moved = new(big.Int).Set(current)
	}
	v.balances[token] = new(big.Int).Sub(current, moved)
	return moved, nil
}

// WithdrawFor is the spender-gated variant of Withdraw used when the caller
// is not the vault owner.
func (v *Vault) WithdrawFor(caller, token, to common.Address, amount *big.Int) (*big.Int, error) {
	if caller != v.governor && !v.approved[caller] {
		return nil, ErrUnauthorized
	}
	return v.Withdraw(token, to, amount)
}

// Sweep transfers a token's whole balance to the recipient, used when
// governance rotates distributions to a new reserve. Governor only.
func (v *Vault) Sweep(caller, token, to common.Address) (*big.Int, error) {
	if caller != v.governor {
		return nil, ErrUnauthorized
	}
	balance, err := v.Balance(token)
	if err != nil {
		return nil, err
	}
	return v.Withdraw(token, to, balance)
}
