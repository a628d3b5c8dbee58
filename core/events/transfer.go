package events

// KindTransferAnnounced identifies control moving to a sub-agent.
const KindTransferAnnounced Kind = "transfer.announced"

// TransferAnnounced marks control of the conversation moving to a named
// sub-agent.
type TransferAnnounced struct {
	Base
	Agent string
}

// NewTransferAnnounced creates a transfer announced event.
func NewTransferAnnounced(agent string) TransferAnnounced {
	return TransferAnnounced{Base: NewBase(KindTransferAnnounced), Agent: agent}
}
