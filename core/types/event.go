package types

// Event represents a typed event emitted during state transitions. Events are
// the only durable observability channel the module exposes; off-chain
// indexers reconstruct user-visible history from them.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
