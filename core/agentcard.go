package transcript

import (
	"sync"

	"github.com/agentwire/agentwire/core/wire"
)

// cardRegistry holds the session-scoped agent cards. It is written at
// most once, from the bootstrap event, and read-only thereafter.
type cardRegistry struct {
	mu      sync.RWMutex
	cards   []wire.AgentCard
	byName  map[string]int
	written bool
}

// set stores the bootstrap cards. Only the first write takes effect;
// set reports whether it did.
func (r *cardRegistry) set(cards []wire.AgentCard) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.written {
		return false
	}
	r.cards = cards
	r.byName = make(map[string]int, len(cards))
	for i, card := range cards {
		r.byName[card.Name] = i
	}
	r.written = true
	return true
}

func (r *cardRegistry) lookup(name string) (wire.AgentCard, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byName[name]
	if !ok {
		return wire.AgentCard{}, false
	}
	return r.cards[idx], true
}

func (r *cardRegistry) list() []wire.AgentCard {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]wire.AgentCard, len(r.cards))
	copy(out, r.cards)
	return out
}
