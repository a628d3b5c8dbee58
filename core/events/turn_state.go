package events

const (
	// KindTurnStarted identifies the opening of a turn's response stream.
	KindTurnStarted Kind = "turn_state.started"
	// KindTurnCompleted identifies a normally sealed turn.
	KindTurnCompleted Kind = "turn_state.completed"
	// KindTurnFailed identifies a turn sealed by a transport failure.
	KindTurnFailed Kind = "turn_state.failed"
	// KindTurnCancelled identifies a turn abandoned by the caller.
	KindTurnCancelled Kind = "turn_state.cancelled"
)

// TurnStarted marks the start of a turn.
type TurnStarted struct {
	Base
	TurnID string
}

// NewTurnStarted creates a turn started event.
func NewTurnStarted(turnID string) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), TurnID: turnID}
}

// TurnCompleted marks a normally sealed turn.
type TurnCompleted struct {
	Base
	TurnID string
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted(turnID string) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), TurnID: turnID}
}

// TurnFailed marks a turn sealed by a transport failure.
type TurnFailed struct {
	Base
	TurnID string
	Error  string
}

// NewTurnFailed creates a turn failed event.
func NewTurnFailed(turnID, err string) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), TurnID: turnID, Error: err}
}

// TurnCancelled marks a turn abandoned mid-stream.
type TurnCancelled struct {
	Base
	TurnID string
}

// NewTurnCancelled creates a turn cancelled event.
func NewTurnCancelled(turnID string) TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled), TurnID: turnID}
}
