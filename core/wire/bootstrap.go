package wire

import "sort"

// matchAgentCards detects the one-shot bootstrap registry shape: a
// non-empty object in which every value is itself an object carrying both
// a description and an endpoint. Anything else, including a partially
// matching object, is not a bootstrap event.
func matchAgentCards(obj map[string]any) []AgentCard {
	if len(obj) == 0 {
		return nil
	}

	cards := make([]AgentCard, 0, len(obj))
	for name, value := range obj {
		descriptor, ok := asMap(value)
		if !ok {
			return nil
		}

		card, ok := cardFromDescriptor(name, descriptor)
		if !ok {
			return nil
		}
		cards = append(cards, card)
	}

	sort.Slice(cards, func(i, j int) bool { return cards[i].Name < cards[j].Name })
	return cards
}

// cardFromDescriptor reads one bootstrap entry. Descriptors come in two
// layouts: a flat object with description and endpoint fields, or a
// wrapper holding the resolved card under "agent_card" with the source
// URL under "agent_card_url".
func cardFromDescriptor(name string, descriptor map[string]any) (AgentCard, bool) {
	fields := descriptor
	endpointFallback := asStringOr(descriptor["agent_card_url"], "")
	if nested, ok := asMap(descriptor["agent_card"]); ok {
		fields = nested
	}

	description, ok := fields["description"].(string)
	if !ok {
		return AgentCard{}, false
	}
	endpoint := asStringOr(firstOf(fields, "url", "endpoint", "agent_card_url"), "")
	if endpoint == "" {
		endpoint = endpointFallback
	}
	if endpoint == "" {
		return AgentCard{}, false
	}

	card := AgentCard{
		Name:            name,
		Description:     description,
		Endpoint:        endpoint,
		ProtocolVersion: asStringOr(firstOf(fields, "protocol_version", "protocolVersion", "version"), ""),
	}
	if capabilities, ok := asMap(fields["capabilities"]); ok {
		card.Capabilities = capabilities
	}
	if cardName, ok := fields["name"].(string); ok && cardName != "" {
		card.Name = cardName
	}
	return card, true
}
