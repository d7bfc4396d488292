package rewards

import "github.com/ethereum/go-ethereum/common"

// tokenRegistry keeps the ordered reward token list alongside an
// address-to-index map so membership checks stay O(1) inside the accrual
// loops. Removal swaps with the last element and pops, so insertion order is
// not preserved across removals.
type tokenRegistry struct {
	list  []common.Address
	index map[common.Address]int
}

func newTokenRegistry(list []common.Address) *tokenRegistry {
	r := &tokenRegistry{
		list:  append([]common.Address(nil), list...),
		index: make(map[common.Address]int, len(list)),
	}
	for i, addr := range r.list {
		r.index[addr] = i
	}
	return r
}

func (r *tokenRegistry) contains(addr common.Address) bool {
	_, ok := r.index[addr]
	return ok
}

func (r *tokenRegistry) add(addr common.Address) bool {
	if r.contains(addr) {
		return false
	}
	r.index[addr] = len(r.list)
	r.list = append(r.list, addr)
	return true
}

func (r *tokenRegistry) remove(addr common.Address) bool {
	i, ok := r.index[addr]
	if !ok {
		return false
	}
	last := len(r.list) - 1
	if i != last {
		r.list[i] = r.list[last]
		r.index[r.list[i]] = i
	}
	r.list = r.list[:last]
	delete(r.index, addr)
	return true
}

func (r *tokenRegistry) addresses() []common.Address {
	return append([]common.Address(nil), r.list...)
}

func (r *tokenRegistry) size() int { return len(r.list) }
