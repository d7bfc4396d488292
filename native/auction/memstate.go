package auction

import "sync"

// MemoryState is a self-contained auction store for services and tooling
// running the engine outside a node's state trie. Safe for concurrent use.
type MemoryState struct {
	mu       sync.Mutex
	nextID   uint64
	auctions map[uint64]*Auction
}

// NewMemoryState returns an empty in-memory auction store.
func NewMemoryState() *MemoryState {
	return &MemoryState{auctions: make(map[uint64]*Auction)}
}

func (m *MemoryState) NextAuctionID() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID, nil
}

func (m *MemoryState) GetAuction(id uint64) (*Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auctions[id].Clone(), nil
}

func (m *MemoryState) PutAuction(a *Auction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auctions[a.ID] = a.Clone()
	return nil
}
