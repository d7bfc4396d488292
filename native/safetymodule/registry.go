package safetymodule

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RegisterStakedToken adds a staking contract to the registry. Governor only.
func (m *Module) RegisterStakedToken(caller, token common.Address, impl StakedToken) error {
	if caller != m.governor {
		return ErrUnauthorized
	}
	if token == (common.Address{}) || impl == nil {
		return ErrZeroAddress
	}
	if _, ok := m.index[token]; ok {
		return ErrTokenAlreadyRegistered
	}
	m.index[token] = len(m.tokens)
	m.tokens = append(m.tokens, token)
	m.impls[token] = impl
	m.emit(newTokenRegisteredEvent(token))
	return nil
}

// RemoveStakedToken drops a staking contract from the registry. The last
// entry is swapped into the vacated slot, so ordering is not preserved.
func (m *Module) RemoveStakedToken(caller, token common.Address) error {
	if caller != m.governor {
		return ErrUnauthorized
	}
	i, ok := m.index[token]
	if !ok {
		return ErrTokenNotRegistered
	}
	last := len(m.tokens) - 1
	if i != last {
		m.tokens[i] = m.tokens[last]
		m.index[m.tokens[i]] = i
	}
	m.tokens = m.tokens[:last]
	delete(m.index, token)
	delete(m.impls, token)
	m.emit(newTokenRemovedEvent(token))
	return nil
}

// NumMarkets reports the number of registered staking contracts. Together
// with MarketAddress and CurrentPosition this makes the module the market
// source of its reward distributor.
func (m *Module) NumMarkets() int { return len(m.tokens) }

// MarketAddress returns the staking contract at index i.
func (m *Module) MarketAddress(i int) (common.Address, error) {
	if i < 0 || i >= len(m.tokens) {
		return common.Address{}, ErrTokenNotRegistered
	}
	return m.tokens[i], nil
}

// CurrentPosition reads a user's live stake balance from the token contract.
func (m *Module) CurrentPosition(user, market common.Address) (*big.Int, error) {
	impl, ok := m.impls[market]
	if !ok {
		return nil, ErrTokenNotRegistered
	}
	return impl.BalanceOf(user)
}

// StakedTokens returns a copy of the registered token addresses.
func (m *Module) StakedTokens() []common.Address {
	out := make([]common.Address, len(m.tokens))
	copy(out, m.tokens)
	return out
}
