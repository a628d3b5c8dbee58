package events

import "github.com/agentwire/agentwire/core/wire"

// KindAgentCardsDiscovered identifies the one-shot bootstrap registry
// update.
const KindAgentCardsDiscovered Kind = "agent_cards.discovered"

// AgentCardsDiscovered carries the agent cards received in the bootstrap
// event.
type AgentCardsDiscovered struct {
	Base
	Cards []wire.AgentCard
}

// NewAgentCardsDiscovered creates an agent cards discovered event.
func NewAgentCardsDiscovered(cards []wire.AgentCard) AgentCardsDiscovered {
	return AgentCardsDiscovered{Base: NewBase(KindAgentCardsDiscovered), Cards: cards}
}
