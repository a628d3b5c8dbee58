package wire

// Effect is a single semantic consequence of one decoded stream event.
// One event may produce several effects; they must be applied in slice
// order.
type Effect interface {
	effect()
}

// TextDelta appends a piece of assistant text to the open text run.
type TextDelta struct {
	Text string
}

// ToolStart announces a tool invocation. Duplicate starts for the same ID
// are expected and must be treated as idempotent by the consumer.
type ToolStart struct {
	ID    string
	Name  string
	Input any
}

// ToolInput updates the input of a registered invocation. ID may be empty
// when the wire event does not carry one, in which case the update applies
// to the most recently started invocation that is still loading. Name is
// set when the event carries enough information to create the invocation
// if it has not been seen yet.
type ToolInput struct {
	ID    string
	Name  string
	Input any
}

// ToolStop closes in-flight invocations. Stop events carry no invocation
// ID on the wire, so a single stop closes every invocation that is still
// loading.
type ToolStop struct{}

// ToolResult attaches result content to a registered invocation. Append
// reports whether the content extends a previous result rather than
// replacing it. ID may be empty for streamed partial results.
type ToolResult struct {
	ID      string
	Content string
	Append  bool
}

// Transfer announces that control of the conversation moved to a named
// sub-agent.
type Transfer struct {
	Agent string
}

// Metadata merges opportunistic metadata fields into the turn.
type Metadata struct {
	Delta MetadataDelta
}

// StopReason records why the model stopped generating.
type StopReason struct {
	Reason string
}

// FinalResult carries the end-of-turn metrics summary.
type FinalResult struct {
	Delta MetadataDelta
}

// AgentCards is the one-shot bootstrap update of the agent-card registry.
type AgentCards struct {
	Cards []AgentCard
}

func (TextDelta) effect()   {}
func (ToolStart) effect()   {}
func (ToolInput) effect()   {}
func (ToolStop) effect()    {}
func (ToolResult) effect()  {}
func (Transfer) effect()    {}
func (Metadata) effect()    {}
func (StopReason) effect()  {}
func (FinalResult) effect() {}
func (AgentCards) effect()  {}

// MetadataDelta is a partial metadata update. Nil fields were absent from
// the wire event; present fields overwrite previously merged values.
type MetadataDelta struct {
	InputTokens    *int
	OutputTokens   *int
	TotalTokens    *int
	LatencySeconds *float64
	CycleDurations []float64
	ToolMetrics    map[string]ToolMetric
	StopReason     *string
}

// ToolMetric is the per-tool usage summary reported with final metrics.
type ToolMetric struct {
	CallCount   int
	SuccessRate float64
	TotalTime   float64
}

// AgentCard is a discovery descriptor for a sub-agent, received either
// from the bootstrap event or from the well-known agent-card endpoint.
type AgentCard struct {
	Name            string
	Description     string
	Endpoint        string
	ProtocolVersion string
	Capabilities    map[string]any
}
