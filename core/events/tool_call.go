package events

const (
	// KindToolCallStarted identifies registration of a new invocation.
	KindToolCallStarted Kind = "tool_call.started"
	// KindToolCallInputUpdated identifies an in-place input update.
	KindToolCallInputUpdated Kind = "tool_call.input_updated"
	// KindToolCallCompleted identifies an invocation leaving the loading
	// state.
	KindToolCallCompleted Kind = "tool_call.completed"
)

// ToolCallStarted marks registration of a new tool invocation.
type ToolCallStarted struct {
	Base
	ID          string
	Name        string
	Description string
}

// NewToolCallStarted creates a tool call started event.
func NewToolCallStarted(id, name, description string) ToolCallStarted {
	return ToolCallStarted{Base: NewBase(KindToolCallStarted), ID: id, Name: name, Description: description}
}

// ToolCallInputUpdated marks an in-place update of an invocation's input.
type ToolCallInputUpdated struct {
	Base
	ID    string
	Name  string
	Input any
}

// NewToolCallInputUpdated creates a tool call input updated event.
func NewToolCallInputUpdated(id, name string, input any) ToolCallInputUpdated {
	return ToolCallInputUpdated{Base: NewBase(KindToolCallInputUpdated), ID: id, Name: name, Input: input}
}

// ToolCallCompleted marks an invocation transitioning out of loading.
type ToolCallCompleted struct {
	Base
	ID     string
	Name   string
	Result string
}

// NewToolCallCompleted creates a tool call completed event.
func NewToolCallCompleted(id, name, result string) ToolCallCompleted {
	return ToolCallCompleted{Base: NewBase(KindToolCallCompleted), ID: id, Name: name, Result: result}
}
